// ABOUTME: The audit subcommand: argument parsing and table output for confirmed console actions

package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/2389/lot-admin/internal/store"
)

// parseAuditArgs accepts --actor NAME, --type TARGET_TYPE and --limit N, each
// also in --flag=value form.
func parseAuditArgs(args []string) (store.AuditFilter, error) {
	var f store.AuditFilter
	for i := 0; i < len(args); i++ {
		name, value, hasValue := strings.Cut(args[i], "=")
		if !strings.HasPrefix(name, "--") {
			return f, fmt.Errorf("unexpected argument: %s", args[i])
		}
		if !hasValue {
			if i+1 >= len(args) {
				return f, fmt.Errorf("%s requires a value", name)
			}
			value = args[i+1]
			i++
		}

		switch name {
		case "--actor":
			f.Actor = &value
		case "--type":
			f.TargetType = &value
		case "--limit":
			n, err := strconv.Atoi(value)
			if err != nil || n < 1 {
				return f, fmt.Errorf("--limit must be a positive number, got %q", value)
			}
			f.Limit = n
		default:
			return f, fmt.Errorf("unknown flag: %s", name)
		}
	}
	return f, nil
}

func printAudit(out io.Writer, entries []store.AuditEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(out, "No confirmed actions recorded.")
		return
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tACTOR\tACTION\tTARGET\tOUTCOME\tMESSAGE")
	for _, e := range entries {
		target := e.TargetID
		if name, ok := e.Detail["target_name"].(string); ok && name != "" {
			target = name
		}
		outcome := color.GreenString(string(e.Outcome))
		if e.Outcome == store.OutcomeFailure {
			outcome = color.RedString(string(e.Outcome))
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			e.Timestamp.Local().Format("2006-01-02 15:04:05"),
			e.Actor,
			e.Action,
			target,
			outcome,
			e.Message,
		)
	}
	tw.Flush()
}
