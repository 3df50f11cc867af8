package tgcore

import (
	"fmt"
	"strings"
	"time"

	"github.com/open-control-systems/netwatch/components/monitor/moncore"
	"github.com/open-control-systems/netwatch/components/status"
)

const (
	stopCallbackPrefix    = "stop:"
	trafficCallbackPrefix = "traffic:"
)

// Command is a subscriber request parsed from a text message or a button callback.
type Command interface {
	command()
}

// StartLogCommand starts the log monitoring.
type StartLogCommand struct{}

// StartThroughputCommand starts the interface throughput monitoring.
type StartThroughputCommand struct {
	Target string

	// Interval - zero means default.
	Interval time.Duration
}

// StopCommand stops the monitoring.
type StopCommand struct {
	// Kind - empty means all kinds.
	Kind moncore.Kind
}

// StatusCommand shows the monitoring status.
type StatusCommand struct {
	// Kind - empty means all kinds.
	Kind moncore.Kind
}

// InterfacesCommand lists the device interfaces.
type InterfacesCommand struct{}

// HelpCommand shows the usage.
type HelpCommand struct{}

func (StartLogCommand) command()        {}
func (StartThroughputCommand) command() {}
func (StopCommand) command()            {}
func (StatusCommand) command()          {}
func (InterfacesCommand) command()      {}
func (HelpCommand) command()            {}

// ParseCommand parses the text message.
//
// Remarks:
//   - status.StatusNotSupported is returned if the message isn't a known command.
//   - status.StatusInvalidArg is returned if the command arguments are invalid.
func ParseCommand(text string) (Command, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return nil, status.StatusNotSupported
	}

	// Commands in groups are suffixed with the bot name: /monitor@netwatch_bot.
	name, _, _ := strings.Cut(strings.TrimPrefix(fields[0], "/"), "@")
	args := fields[1:]

	switch strings.ToLower(name) {
	case "monitor":
		return StartLogCommand{}, nil

	case "traffic":
		if len(args) < 1 {
			return nil, fmt.Errorf("usage: /traffic <interface> [interval]: %w",
				status.StatusInvalidArg)
		}

		cmd := StartThroughputCommand{Target: args[0]}

		if len(args) > 1 {
			interval, err := time.ParseDuration(args[1])
			if err != nil || interval <= 0 {
				return nil, fmt.Errorf("invalid interval: %s: %w", args[1], status.StatusInvalidArg)
			}

			cmd.Interval = interval
		}

		return cmd, nil

	case "stop":
		kind, err := parseOptionalKind(args)
		if err != nil {
			return nil, err
		}

		return StopCommand{Kind: kind}, nil

	case "status":
		kind, err := parseOptionalKind(args)
		if err != nil {
			return nil, err
		}

		return StatusCommand{Kind: kind}, nil

	case "interfaces":
		return InterfacesCommand{}, nil

	case "help", "start":
		return HelpCommand{}, nil

	default:
		return nil, status.StatusNotSupported
	}
}

// ParseCallback parses the inline keyboard callback data.
func ParseCallback(data string) (Command, error) {
	switch {
	case strings.HasPrefix(data, stopCallbackPrefix):
		kind, err := moncore.ParseKind(strings.TrimPrefix(data, stopCallbackPrefix))
		if err != nil {
			return nil, err
		}

		return StopCommand{Kind: kind}, nil

	case strings.HasPrefix(data, trafficCallbackPrefix):
		target := strings.TrimPrefix(data, trafficCallbackPrefix)
		if target == "" {
			return nil, fmt.Errorf("empty interface: %w", status.StatusInvalidArg)
		}

		return StartThroughputCommand{Target: target}, nil

	default:
		return nil, status.StatusNotSupported
	}
}

func parseOptionalKind(args []string) (moncore.Kind, error) {
	if len(args) == 0 {
		return "", nil
	}

	return moncore.ParseKind(args[0])
}
