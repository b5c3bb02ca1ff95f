// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - Single question command handler.
//
// Handles "seekr ask" which runs one question/answer turn and prints the
// answer to stdout, without touching the saved conversation list.
//
// Examples:
//
//	seekr ask "What is the largest moon of Saturn?"
//	seekr ask --json "capital of France" | jq .content
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/jeranaias/seekr-tui/internal/chat"
	"github.com/jeranaias/seekr-tui/internal/model"
	"github.com/jeranaias/seekr-tui/internal/store"
)

// RunAsk runs a one-shot question against a throwaway conversation.
// The conversation is deleted afterwards so single questions do not pollute
// the saved history.
func RunAsk(engine *chat.Engine, st *store.Store, question string, asJSON bool) error {
	if question == "" {
		return errors.New("usage: seekr ask \"question\"")
	}

	previous := st.ActiveConversationID()
	id := st.CreateConversation()
	defer func() {
		st.DeleteConversation(id)
		if previous != "" {
			st.SetActiveConversation(previous)
		}
	}()

	engine.SendMessage(context.Background(), question)

	conv, ok := st.Get(id)
	if !ok {
		return errors.New("conversation vanished during the turn")
	}
	last, ok := conv.LastMessage()
	if !ok || last.Role != model.RoleAssistant {
		return errors.New("no answer was produced")
	}

	if last.Status == model.StatusFailed {
		reason := engine.LastError()
		if reason == "" {
			reason = "answer failed to generate"
		}
		return errors.New(reason)
	}

	if asJSON {
		data, err := json.MarshalIndent(last, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, string(data))
		return nil
	}

	fmt.Print(formatAnswer(last))
	return nil
}
