package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/qrave1/RoomSignal/internal/domain/models"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <roomId>",
	Short: "Show members, descriptions and candidates published to a room",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target, err := url.JoinPath(serverURL, "web-rtc", "room", args[0])
		if err != nil {
			return fmt.Errorf("build url: %w", err)
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()

		var mailbox models.Mailbox
		if err := doJSON(ctx, http.MethodGet, target, nil, &mailbox); err != nil {
			return err
		}

		renderMailbox(cmd, mailbox)

		return nil
	},
}

func renderMailbox(cmd *cobra.Command, mailbox models.Mailbox) {
	members := newTable(cmd, "Room "+mailbox.RoomID)
	members.AppendHeader(table.Row{"User", "Role", "Joined"})
	for _, m := range mailbox.Members {
		members.AppendRow(table.Row{m.UserID, m.Role(), m.JoinedAt.Format(time.RFC3339)})
	}
	members.AppendFooter(table.Row{"", "Total", len(mailbox.Members)})
	members.Render()

	descriptions := newTable(cmd, "Descriptions")
	descriptions.AppendHeader(table.Row{"User", "Type", "SDP bytes", "Updated"})
	for _, d := range mailbox.Descriptions {
		sdpType, size := "?", 0
		if desc, err := d.WebRTC(); err == nil {
			sdpType, size = desc.Type.String(), len(desc.SDP)
		}
		descriptions.AppendRow(table.Row{d.UserID, sdpType, size, d.UpdatedAt.Format(time.RFC3339)})
	}
	descriptions.Render()

	candidates := newTable(cmd, "Candidates")
	candidates.AppendHeader(table.Row{"User", "Count", "First", "Updated"})
	for _, b := range mailbox.Candidates {
		first := ""
		if len(b.Candidates) > 0 {
			first = candidateString(b.Candidates[0])
		}
		candidates.AppendRow(table.Row{b.UserID, len(b.Candidates), first, b.UpdatedAt.Format(time.RFC3339)})
	}
	candidates.Render()
}

func newTable(cmd *cobra.Command, title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleRounded)
	t.SetTitle(title)
	return t
}

// candidateString достает строку кандидата из ICECandidateInit, иначе
// показывает JSON как есть.
func candidateString(raw json.RawMessage) string {
	var init struct {
		Candidate string `json:"candidate"`
	}
	if err := json.Unmarshal(raw, &init); err == nil && init.Candidate != "" {
		return init.Candidate
	}

	return string(raw)
}

func init() {
	addClientFlags(inspectCmd)

	rootCmd.AddCommand(inspectCmd)
}
