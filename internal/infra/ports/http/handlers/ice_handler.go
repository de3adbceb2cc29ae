package handlers

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pion/webrtc/v4"

	"github.com/qrave1/RoomSignal/internal/application/clock"
	"github.com/qrave1/RoomSignal/internal/application/config"
)

// turnCredentialTTL - сколько живут временные креды TURN
const turnCredentialTTL = time.Hour

type IceHandler struct {
	cfg   *config.Config
	clock clock.Clock
}

func NewIceHandler(cfg *config.Config, clk clock.Clock) *IceHandler {
	return &IceHandler{cfg: cfg, clock: clk}
}

// IceServers отдает STUN/TURN сервера. Для TURN генерируются креды по
// схеме TURN REST API (username = срок действия, password = HMAC-SHA1).
func (h *IceHandler) IceServers(c echo.Context) error {
	servers := h.cfg.ICEServers()

	if h.cfg.CoturnServer.Secret != "" {
		username := fmt.Sprintf("%d", h.clock.Now().Add(turnCredentialTTL).Unix())

		// Создаём HMAC-SHA1 с использованием static-auth-secret
		mac := hmac.New(sha1.New, []byte(h.cfg.CoturnServer.Secret))
		mac.Write([]byte(username))
		password := base64.StdEncoding.EncodeToString(mac.Sum(nil))

		for i := range servers {
			if isTURN(servers[i]) {
				servers[i].Username = username
				servers[i].Credential = password
			}
		}
	}

	return c.JSON(http.StatusOK, map[string][]webrtc.ICEServer{"iceServers": servers})
}

func isTURN(server webrtc.ICEServer) bool {
	for _, u := range server.URLs {
		if strings.HasPrefix(u, "turn:") {
			return true
		}
	}

	return false
}
