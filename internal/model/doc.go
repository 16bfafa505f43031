// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model holds the conversation shown in the chat: prompts, answers
// with their source lists, and notices.
//
// An answer is created streaming, receives chunks with Append and is closed
// with Finish:
//
//	conv := model.NewConversation(0)
//	conv.AddPrompt("What are goroutines?")
//	answer := conv.AddAnswer(records)
//	answer.Append("Lightweight threads [1].")
//	answer.Finish(stats.Stop(time.Now()))
package model
