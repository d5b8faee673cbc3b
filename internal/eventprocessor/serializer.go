// Storefeed - Continuous Multi-Column Product Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefeed

package eventprocessor

import (
	"fmt"
	"strconv"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/storefeed/internal/feed"
)

// Metadata keys set on every lifecycle message.
const (
	MetadataKind      = "kind"
	MetadataSessionID = "session_id"
	MetadataToken     = "cycle_token"
)

// NewMessage serializes a lifecycle event into a Watermill message with a
// fresh UUID.
func NewMessage(event *feed.LifecycleEvent) (*message.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal lifecycle event: %w", err)
	}
	msg := message.NewMessage(uuid.NewString(), data)
	msg.Metadata.Set(MetadataKind, string(event.Kind))
	msg.Metadata.Set(MetadataSessionID, event.SessionID)
	msg.Metadata.Set(MetadataToken, strconv.FormatUint(event.CycleToken, 10))
	return msg, nil
}

// DecodeMessage parses a lifecycle message payload.
func DecodeMessage(msg *message.Message) (feed.LifecycleEvent, error) {
	var event feed.LifecycleEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		return event, fmt.Errorf("unmarshal lifecycle event %s: %w", msg.UUID, err)
	}
	if event.Kind == "" || event.SessionID == "" {
		return event, fmt.Errorf("lifecycle event %s: missing kind or session id", msg.UUID)
	}
	return event, nil
}
