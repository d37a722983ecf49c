package handlers

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/sourpuh/WaymarkPresetPlugin/internal/gamemem"
	"github.com/sourpuh/WaymarkPresetPlugin/internal/library"
	"github.com/sourpuh/WaymarkPresetPlugin/internal/util"
)

const (
	TextCommandName = "/pwaymark"

	subcommandPlace     = "place"
	subcommandImport    = "import"
	subcommandExport    = "export"
	subcommandExportAll = "exportall"
	subcommandSlotInfo  = "slotinfo"
	subcommandHelp      = "help"
	subcommandConfig    = "config"
	helpArgCommands     = "commands"

	argIncludeTime = "-t"
	argGameSlot    = "-g"
)

// TextCommand runs one chat command (the text after /pwaymark) and returns
// the response to print, or "" for none. Chat placements skip the cooldown
// and the zone check. With responses suppressed only help and export
// output is returned, since that output is the point of the command.
func (s *Service) TextCommand(ctx context.Context, args string) string {
	sub, rest := splitSubcommand(args)

	suppress := s.deps.Config.SuppressCommandLineResponses
	var response string
	switch sub {
	case subcommandSlotInfo:
		response = s.textSlotInfo(ctx, rest)
	case subcommandPlace:
		response = s.textPlace(ctx, rest)
	case subcommandImport:
		response = s.textImport(ctx, rest)
	case subcommandExport:
		response = s.textExport(ctx, rest)
		suppress = false
	case subcommandExportAll:
		response = s.textExportAll(rest)
		suppress = false
	case subcommandHelp, "?":
		response = helpText(rest)
		suppress = false
	default:
		response = helpText(rest)
	}

	if suppress {
		return ""
	}
	return response
}

// splitSubcommand lowercases the first word and returns the trimmed rest
// untouched, since it may hold quoted names or JSON.
func splitSubcommand(args string) (string, string) {
	args = strings.TrimSpace(args)
	sub, rest, _ := strings.Cut(args, " ")
	return strings.ToLower(sub), strings.TrimSpace(rest)
}

func parseSlot(arg string) (int, error) {
	slot, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		return 0, gamemem.ErrInvalidSlot
	}
	if err := gamemem.CheckSlot(slot); err != nil {
		return 0, err
	}
	return slot, nil
}

func (s *Service) textSlotInfo(ctx context.Context, args string) string {
	slot, err := parseSlot(args)
	if err != nil {
		return fmt.Sprintf("An invalid game slot number was provided. Use a number from 1 to %d.", gamemem.MaxPresetSlotNum)
	}
	info, err := s.SlotInfo(ctx, slot)
	if err != nil {
		s.writeLog("TextCommand", fmt.Sprintf("Failed to read slot %d: %v", slot, err), "ERROR")
		return "An unknown error occurred while trying to read the game's waymark data."
	}
	return fmt.Sprintf("Slot %d Contents:\n%s", slot, info)
}

func (s *Service) textPlace(ctx context.Context, args string) string {
	var index int
	if len(args) >= 2 && strings.HasPrefix(args, `"`) && strings.HasSuffix(args, `"`) {
		name := args[1 : len(args)-1]
		i, err := s.indexOfName(name)
		if err != nil {
			return fmt.Sprintf("Unable to find preset %q.", name)
		}
		index = i
	} else {
		i, err := strconv.Atoi(args)
		if err != nil {
			return fmt.Sprintf("Unable to parse %q as a library index or a quoted preset name.", args)
		}
		index = i
	}

	err := s.place(ctx, index, false, SourceCommand)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, library.ErrIndexOutOfRange):
		return fmt.Sprintf("Invalid library index %d.", index)
	default:
		return fmt.Sprintf("An error occurred placing preset %d.", index)
	}
}

func (s *Service) textImport(ctx context.Context, args string) string {
	slot, err := parseSlot(args)
	if err != nil {
		return fmt.Sprintf("Unable to import %q: use a game slot number from 1 to %d.", args, gamemem.MaxPresetSlotNum)
	}
	i, err := s.importSlot(ctx, slot, SourceCommand)
	if err != nil {
		return "An unknown error occurred while trying to read the game's waymark data."
	}
	return fmt.Sprintf("Imported game slot %d as library preset %d.", slot, i)
}

// textExport handles "export [-t] [-g] <from> [<to slot>]". With one
// number the preset string is returned; with two the preset is written to
// the target game slot. -g reads the source from a game slot instead of
// the library.
func (s *Service) textExport(ctx context.Context, args string) string {
	params := util.SplitArgs(args)
	includeTime := slices.Contains(params, argIncludeTime)
	useGameSlot := slices.Contains(params, argGameSlot)

	var numbers []int
	for _, p := range params {
		if n, err := strconv.Atoi(p); err == nil {
			numbers = append(numbers, n)
		}
	}
	if len(numbers) == 0 {
		return "No preset index or game slot was specified."
	}

	from := numbers[0]
	if len(numbers) == 1 {
		var (
			out string
			err error
		)
		if useGameSlot {
			out, err = s.ExportSlot(ctx, from, includeTime)
		} else {
			out, err = s.ExportPreset(from, includeTime)
		}
		if err != nil {
			return exportErrorText(err, from, useGameSlot)
		}
		return out
	}

	to := numbers[1]
	if err := gamemem.CheckSlot(to); err != nil {
		return fmt.Sprintf("Invalid target game slot %d.", to)
	}
	var err error
	if useGameSlot {
		err = s.CopySlotToSlot(ctx, from, to)
	} else {
		err = s.ExportToSlot(ctx, from, to)
	}
	if err != nil {
		return exportErrorText(err, from, useGameSlot)
	}
	return fmt.Sprintf("Preset exported to game slot %d.", to)
}

func exportErrorText(err error, from int, useGameSlot bool) string {
	switch {
	case errors.Is(err, gamemem.ErrInvalidSlot):
		return fmt.Sprintf("Invalid source game slot %d.", from)
	case errors.Is(err, library.ErrIndexOutOfRange):
		return fmt.Sprintf("Invalid library index %d.", from)
	case useGameSlot:
		return "An unknown error occurred while trying to read the game's waymark data."
	default:
		return "An unknown error occurred while exporting the preset."
	}
}

func (s *Service) textExportAll(args string) string {
	includeTime := strings.ToLower(strings.TrimSpace(args)) == argIncludeTime
	out, err := s.ExportAll(includeTime)
	if err != nil {
		s.writeLog("TextCommand", fmt.Sprintf("Failed to export library: %v", err), "ERROR")
		return "An unknown error occurred while exporting the library."
	}
	return out
}

func helpText(args string) string {
	switch strings.ToLower(strings.TrimSpace(args)) {
	case helpArgCommands:
		return fmt.Sprintf("Valid commands are: %s, %s, %s, %s, %s, %s. Use \"%s %s <command>\" for details.",
			subcommandPlace, subcommandImport, subcommandExport, subcommandExportAll, subcommandSlotInfo, subcommandConfig,
			TextCommandName, subcommandHelp)
	case subcommandConfig:
		return "Settings are read from the plugin configuration file."
	case subcommandSlotInfo:
		return fmt.Sprintf("Prints the contents of a game slot. Usage: \"%s %s <slot>\".", TextCommandName, subcommandSlotInfo)
	case subcommandPlace:
		return fmt.Sprintf("Places a library preset by index or by quoted name. Usage: \"%s %s <index>\" or \"%s %s \\\"<name>\\\"\".",
			TextCommandName, subcommandPlace, TextCommandName, subcommandPlace)
	case subcommandImport:
		return fmt.Sprintf("Copies a game slot into the library. Usage: \"%s %s <slot>\".", TextCommandName, subcommandImport)
	case subcommandExport:
		return fmt.Sprintf("Exports a preset. Usage: \"%s %s [%s] [%s] <index or slot> [<target slot>]\". %s includes the timestamp; %s reads from a game slot.",
			TextCommandName, subcommandExport, argIncludeTime, argGameSlot, argIncludeTime, argGameSlot)
	case subcommandExportAll:
		return fmt.Sprintf("Exports the whole library, one preset per line. Add %s to include timestamps.", argIncludeTime)
	default:
		return fmt.Sprintf("Use \"%s %s %s\" for a list of commands.", TextCommandName, subcommandHelp, helpArgCommands)
	}
}
