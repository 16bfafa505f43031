// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// scan.go - The scan command: run one tracker scan over a rendered answer.
package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jeranaias/citelink/internal/citation"
	"github.com/jeranaias/citelink/internal/dom"
	"github.com/jeranaias/citelink/internal/frame"
	"github.com/jeranaias/citelink/internal/replay"
	"github.com/jeranaias/citelink/internal/tracker"
	"github.com/jeranaias/citelink/internal/util"
)

// scanMessageID is the container id the scanned fragment is mounted under.
const scanMessageID = "scan"

// HandleScan reports which citations an HTML answer references.
func HandleScan(args Args, stdout io.Writer) error {
	records, err := replay.LoadCitations(args.CitationsFile)
	if err != nil {
		return err
	}
	if err := citation.ValidateList(records); err != nil {
		return fmt.Errorf("%s: %w", args.CitationsFile, err)
	}

	fragment, err := readFile(args.Raw[0])
	if err != nil {
		return err
	}
	var rawText string
	if args.TextFile != "" {
		if rawText, err = readFile(args.TextFile); err != nil {
			return err
		}
	}

	data, err := Scan(fragment, rawText, records)
	if err != nil {
		return err
	}
	if args.JSON {
		return NewJSONResponse("scan", data).Write(stdout)
	}
	printScan(stdout, data)
	return nil
}

// Scan mounts fragment as a message, runs the tracker's first scan and
// returns what it found.
func Scan(fragment, rawText string, records []citation.Record) (ScanData, error) {
	doc := dom.NewDocument()
	doc.Mount(scanMessageID)
	if err := doc.SetContent(scanMessageID, fragment); err != nil {
		return ScanData{}, fmt.Errorf("scan: %w", err)
	}

	loop := frame.New(0)
	t := tracker.New(tracker.Options{
		MessageID: scanMessageID,
		Document:  doc,
		Records:   records,
		RawText:   rawText,
		Scheduler: loop,
	})
	t.Mount()
	defer t.Unmount()
	loop.Tick(time.Now())

	data := ScanData{
		Header:  t.Header(),
		Source:  t.Source(),
		Total:   len(records),
		Cited:   []int{},
		Sources: []ScanEntry{},
	}
	for _, r := range t.Visible() {
		data.Cited = append(data.Cited, r.Index)
		data.Sources = append(data.Sources, ScanEntry{Index: r.Index, Title: r.DisplayTitle(), URL: r.URL})
	}
	return data, nil
}

func printScan(w io.Writer, data ScanData) {
	fmt.Fprintln(w, TitleStyle.Render("Sources: "+data.Header))
	fmt.Fprintln(w, RenderLabel("Found by", data.Source))
	fmt.Fprintln(w, RenderSeparator())
	if len(data.Sources) == 0 {
		fmt.Fprintln(w, DimStyle.Render("No cited sources."))
		return
	}
	col := 0
	for _, s := range data.Sources {
		col = max(col, util.StringWidth(fmt.Sprintf("[%d]", s.Index)))
	}
	indent := strings.Repeat(" ", col+1)
	for _, s := range data.Sources {
		num := util.PadRight(fmt.Sprintf("[%d]", s.Index), col)
		fmt.Fprintf(w, "%s %s\n", NumberStyle.Render(num), ValueStyle.Render(s.Title))
		fmt.Fprintf(w, "%s%s\n", indent, DimStyle.Render(s.URL))
	}
}
