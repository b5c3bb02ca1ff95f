// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cloud implements the chat-completion client.
//
// The provider speaks the OpenAI-compatible chat completions protocol: one
// POST carrying {model, messages}, one response carrying the assistant text
// in choices[0].message.content. A response with no choices yields an empty
// answer, not an error.
//
// Completion is the fatal leg of the answer pipeline. Where search failures
// degrade a turn, a completion failure ends it, so this client propagates
// errors to the orchestrator rather than absorbing them. Errors are typed:
//
//   - ErrNotConfigured: no API key set
//   - ErrAuthFailed: HTTP 401
//   - ErrRateLimited: HTTP 429
//   - *APIError: any other provider-reported failure
//
// Match with errors.Is / errors.As.
package cloud
