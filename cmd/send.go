package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/qrave1/RoomSignal/internal/infra/ports/http/dto"
)

var sendFlags struct {
	room string
	user string
}

var sendCmd = &cobra.Command{
	Use:   "send <message>",
	Short: "Append a message to a room log",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target, err := url.JoinPath(serverURL, "server-sent-event", "room", sendFlags.room, "send")
		if err != nil {
			return fmt.Errorf("build url: %w", err)
		}

		if sendFlags.user == "" {
			sendFlags.user = uuid.NewString()
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()

		var resp dto.SendMessageResponse
		if err := doJSON(ctx, http.MethodPost, target, dto.SendMessageRequest{
			UserID:  sendFlags.user,
			Message: args[0],
		}, &resp); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "sent %s (%d messages in room)\n", resp.Message.ID, resp.TotalMessages)

		return nil
	},
}

// doJSON выполняет запрос с JSON телом и разбирает JSON ответ. Ответ не
// 2xx превращается в ошибку с текстом поля error.
func doJSON(ctx context.Context, method, target string, in, out any) error {
	var body *bytes.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var failure struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&failure)

		return fmt.Errorf("%s %s: status %d: %s", method, target, resp.StatusCode, failure.Error)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

func init() {
	addClientFlags(sendCmd)

	sendCmd.Flags().StringVarP(&sendFlags.room, "room", "r", "", "room id")
	sendCmd.Flags().StringVarP(&sendFlags.user, "user", "u", "", "sender user id (random UUID if empty)")
	_ = sendCmd.MarkFlagRequired("room")

	rootCmd.AddCommand(sendCmd)
}
