package ai

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"strings"
)

// StreamEvent is one event read from the model's SSE stream.
type StreamEvent interface{ isStreamEvent() }

// TextDelta is a chunk of assistant text.
type TextDelta struct {
	Text string
}

// ToolCall is a completed tool invocation with its full argument object.
type ToolCall struct {
	ID    string
	Name  string
	Input json.RawMessage
}

// MessageDone marks the end of the assistant turn.
type MessageDone struct{}

func (TextDelta) isStreamEvent()   {}
func (ToolCall) isStreamEvent()    {}
func (MessageDone) isStreamEvent() {}

// Stream reads the provider's SSE stream and assembles tool-call arguments
// from their partial JSON deltas. Recv returns io.EOF after MessageDone.
type Stream struct {
	ctx     context.Context
	body    io.ReadCloser
	scanner *bufio.Scanner

	event string
	data  strings.Builder

	// current tool_use block being assembled
	toolID    string
	toolName  string
	toolInput strings.Builder
}

func newStream(ctx context.Context, body io.ReadCloser) *Stream {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	return &Stream{ctx: ctx, body: body, scanner: scanner}
}

// Recv returns the next stream event.
func (s *Stream) Recv() (StreamEvent, error) {
	for s.scanner.Scan() {
		select {
		case <-s.ctx.Done():
			return nil, s.ctx.Err()
		default:
		}

		line := s.scanner.Text()

		if strings.HasPrefix(line, "event: ") {
			s.event = strings.TrimPrefix(line, "event: ")
			continue
		}
		if strings.HasPrefix(line, "data: ") {
			s.data.WriteString(strings.TrimPrefix(line, "data: "))
			continue
		}
		if line == "" && s.data.Len() > 0 {
			ev := s.parse(s.event, s.data.String())
			s.event = ""
			s.data.Reset()
			if ev != nil {
				return ev, nil
			}
		}
	}

	if err := s.scanner.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

// Close releases the underlying response body.
func (s *Stream) Close() error {
	return s.body.Close()
}

func (s *Stream) parse(event, data string) StreamEvent {
	switch event {
	case "content_block_start":
		var block struct {
			ContentBlock struct {
				Type string `json:"type"`
				ID   string `json:"id"`
				Name string `json:"name"`
			} `json:"content_block"`
		}
		if err := json.Unmarshal([]byte(data), &block); err != nil {
			return nil
		}
		if block.ContentBlock.Type == "tool_use" {
			s.toolID = block.ContentBlock.ID
			s.toolName = block.ContentBlock.Name
			s.toolInput.Reset()
		}

	case "content_block_delta":
		var delta struct {
			Delta struct {
				Type        string `json:"type"`
				Text        string `json:"text"`
				PartialJSON string `json:"partial_json"`
			} `json:"delta"`
		}
		if err := json.Unmarshal([]byte(data), &delta); err != nil {
			return nil
		}
		switch delta.Delta.Type {
		case "text_delta":
			return TextDelta{Text: delta.Delta.Text}
		case "input_json_delta":
			s.toolInput.WriteString(delta.Delta.PartialJSON)
		}

	case "content_block_stop":
		if s.toolName != "" {
			input := s.toolInput.String()
			if input == "" {
				input = "{}"
			}
			call := ToolCall{ID: s.toolID, Name: s.toolName, Input: json.RawMessage(input)}
			s.toolID, s.toolName = "", ""
			s.toolInput.Reset()
			return call
		}

	case "message_stop":
		return MessageDone{}
	}
	return nil
}
