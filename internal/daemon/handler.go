package daemon

import (
	"context"
	"errors"

	"github.com/berrythewa/cliprecall/internal/ipc"
	"github.com/berrythewa/cliprecall/internal/types"
)

// HandleIPC processes incoming IPC requests from the CLI.
func (s *Service) HandleIPC(ctx context.Context, req *ipc.Request) *ipc.Response {
	switch req.Command {
	case ipc.CmdPing:
		return ipc.OK("pong", nil)

	case ipc.CmdList:
		records := s.List()
		if limit, ok := req.IntArg("limit"); ok && limit > 0 && limit < len(records) {
			records = records[:limit]
		}
		return ipc.OK("", types.Views(records))

	case ipc.CmdSearch:
		keyword, _ := req.StringArg("keyword")
		return ipc.OK("", types.Views(s.Search(keyword)))

	case ipc.CmdClear:
		n := s.Size()
		s.Clear()
		return ipc.OK("history cleared", ipc.SizeData{Size: n, Capacity: s.Capacity()})

	case ipc.CmdSize:
		return ipc.OK("", ipc.SizeData{Size: s.Size(), Capacity: s.Capacity()})

	case ipc.CmdRestore:
		id, ok := req.StringArg("id")
		if !ok || id == "" {
			return ipc.Errorf("restore requires an id")
		}
		rec, err := s.Restore(ctx, id)
		if errors.Is(err, ErrRecordNotFound) {
			return ipc.Errorf("no history entry with id %s", id)
		}
		if err != nil {
			return ipc.Errorf("%v", err)
		}
		return ipc.OK("restored", rec.View())

	case ipc.CmdToggle:
		return ipc.OK("", ipc.ToggleData{Visible: s.ToggleVisibility()})

	default:
		return ipc.Errorf("unknown command %q", req.Command)
	}
}
