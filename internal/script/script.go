// Package script parses and drives the line-oriented action list a gateway
// instance replays against every connection once it reaches the Ready state.
// The format and the actions it supports are intentionally small: each line
// names one action and, where required, its arguments.
package script

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// Kind identifies which variant of Action a value holds.
type Kind int

const (
	KindSleep Kind = iota
	KindInvalidateSession
	KindDispatch
	KindHeartbeat
	KindRandomMessageCreate
	KindRandomGuildCreate
	KindGracefulClose
	KindAbruptClose
)

// reserved reports whether a Kind is accepted by the grammar but not yet
// implemented by the driver; such actions are logged and skipped at runtime.
func (k Kind) reserved() bool {
	switch k {
	case KindRandomMessageCreate, KindRandomGuildCreate, KindGracefulClose, KindAbruptClose:
		return true
	default:
		return false
	}
}

func (k Kind) String() string {
	switch k {
	case KindSleep:
		return "sleep"
	case KindInvalidateSession:
		return "invalidate_session"
	case KindDispatch:
		return "dispatch"
	case KindHeartbeat:
		return "heartbeat"
	case KindRandomMessageCreate:
		return "random_message_create"
	case KindRandomGuildCreate:
		return "random_guild_create"
	case KindGracefulClose:
		return "graceful_close"
	case KindAbruptClose:
		return "abrupt_close"
	default:
		return "unknown"
	}
}

// Action is one line of a parsed script. Only the fields relevant to Kind are
// populated.
type Action struct {
	Kind Kind

	Sleep time.Duration

	Resumable bool

	EventType string
	Data      json.RawMessage
}

func (a Action) String() string {
	switch a.Kind {
	case KindSleep:
		return fmt.Sprintf("Sleep(%s)", a.Sleep)
	case KindInvalidateSession:
		return fmt.Sprintf("InvalidateSession(%t)", a.Resumable)
	case KindDispatch:
		return fmt.Sprintf("Dispatch(%s, %s)", a.EventType, a.Data)
	default:
		return a.Kind.String()
	}
}

// Text renders the action back to its script-line form. Sleeps always render
// in milliseconds, so reparsing the result yields an equivalent action even
// when the original line used sleep_s.
func (a Action) Text() string {
	switch a.Kind {
	case KindSleep:
		return fmt.Sprintf("sleep_ms %d", a.Sleep/time.Millisecond)
	case KindInvalidateSession:
		return fmt.Sprintf("invalidate_session %t", a.Resumable)
	case KindDispatch:
		return fmt.Sprintf("dispatch %s %s", a.EventType, a.Data)
	default:
		return a.Kind.String()
	}
}

// ParseError is a categorized error raised while parsing a script.
type ParseError struct {
	Line int
	Kind ParseErrorKind
}

type ParseErrorKind int

const (
	ErrInvalidAction ParseErrorKind = iota
	ErrExpectedBoolean
	ErrExpectedInteger
	ErrMissingRequiredArgument
	ErrInvalidJSON
)

func (e *ParseError) Error() string {
	var msg string
	switch e.Kind {
	case ErrInvalidAction:
		msg = "invalid action"
	case ErrExpectedBoolean:
		msg = "expected a boolean"
	case ErrExpectedInteger:
		msg = "expected an integer"
	case ErrMissingRequiredArgument:
		msg = "missing required argument"
	case ErrInvalidJSON:
		msg = "invalid JSON"
	default:
		msg = "unknown parse error"
	}
	return fmt.Sprintf("script: line %d: %s", e.Line, msg)
}

// Parse splits input into lines and converts each non-empty line into an
// Action. Blank lines are skipped. Lines are otherwise split on the first
// run of whitespace into an action name and an optional argument string; the
// argument string, when present, is passed on unmodified (so dispatch's own
// event-type/JSON split happens on the full remainder of the line).
func Parse(input string) ([]Action, error) {
	var actions []Action

	for i, line := range strings.Split(input, "\n") {
		lineNo := i + 1
		if line == "" {
			continue
		}

		name, args, hasArgs := line, "", false
		if idx := strings.IndexFunc(line, unicode.IsSpace); idx >= 0 {
			name = line[:idx]
			args = strings.TrimLeftFunc(line[idx:], unicode.IsSpace)
			hasArgs = true
		}

		action, err := parseAction(name, args, hasArgs, lineNo)
		if err != nil {
			return nil, err
		}
		actions = append(actions, action)
	}

	return actions, nil
}

func parseAction(name, args string, hasArgs bool, lineNo int) (Action, error) {
	switch name {
	case "sleep_ms":
		if !hasArgs {
			return Action{}, &ParseError{lineNo, ErrMissingRequiredArgument}
		}
		ms, err := strconv.ParseUint(args, 10, 64)
		if err != nil {
			return Action{}, &ParseError{lineNo, ErrExpectedInteger}
		}
		return Action{Kind: KindSleep, Sleep: time.Duration(ms) * time.Millisecond}, nil

	case "sleep_s":
		if !hasArgs {
			return Action{}, &ParseError{lineNo, ErrMissingRequiredArgument}
		}
		s, err := strconv.ParseUint(args, 10, 64)
		if err != nil {
			return Action{}, &ParseError{lineNo, ErrExpectedInteger}
		}
		return Action{Kind: KindSleep, Sleep: time.Duration(s) * time.Second}, nil

	case "invalidate_session":
		if !hasArgs {
			return Action{}, &ParseError{lineNo, ErrMissingRequiredArgument}
		}
		// Only the literal spellings are booleans; strconv.ParseBool's
		// extra forms ("1", "T", ...) are parse errors here.
		switch args {
		case "true":
			return Action{Kind: KindInvalidateSession, Resumable: true}, nil
		case "false":
			return Action{Kind: KindInvalidateSession, Resumable: false}, nil
		default:
			return Action{}, &ParseError{lineNo, ErrExpectedBoolean}
		}

	case "dispatch":
		if !hasArgs {
			return Action{}, &ParseError{lineNo, ErrMissingRequiredArgument}
		}
		eventType, data, ok := strings.Cut(args, " ")
		if !ok {
			return Action{}, &ParseError{lineNo, ErrMissingRequiredArgument}
		}
		if !json.Valid([]byte(data)) {
			return Action{}, &ParseError{lineNo, ErrInvalidJSON}
		}
		return Action{Kind: KindDispatch, EventType: eventType, Data: json.RawMessage(data)}, nil

	case "heartbeat":
		return Action{Kind: KindHeartbeat}, nil

	case "random_message_create":
		return Action{Kind: KindRandomMessageCreate}, nil

	case "random_guild_create":
		return Action{Kind: KindRandomGuildCreate}, nil

	case "graceful_close":
		return Action{Kind: KindGracefulClose}, nil

	case "abrupt_close":
		return Action{Kind: KindAbruptClose}, nil

	default:
		return Action{}, &ParseError{lineNo, ErrInvalidAction}
	}
}
