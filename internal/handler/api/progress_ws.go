package api

import (
	"net/http"
	"time"

	models "FactorBack/internal/domain/models"
	domrepo "FactorBack/internal/domain/repository"
	"FactorBack/internal/service/progress"
	xlogger "FactorBack/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const wsWriteTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ProgressWSHandler streams run progress events over a websocket.
// Runs that already finished get their equity curve replayed so late
// subscribers still see the full picture.
type ProgressWSHandler struct {
	hub    *progress.Hub
	runs   domrepo.RunStore
	logger *xlogger.Logger
}

func NewProgressWSHandler(hub *progress.Hub, runs domrepo.RunStore, logger *xlogger.Logger) *ProgressWSHandler {
	return &ProgressWSHandler{hub: hub, runs: runs, logger: logger}
}

func (h *ProgressWSHandler) Stream(c echo.Context) error {
	runID := c.Param("id")
	res, known := h.runs.Get(runID)
	if !known {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "unknown run id"})
	}

	// Subscribe before checking status so no event is lost between the
	// status read and the upgrade.
	events, cancel := h.hub.Subscribe(runID)
	defer cancel()

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	if res.Status == models.RunDone || res.Status == models.RunFailed {
		return h.replay(conn, res)
	}

	// Discard client frames but notice disconnects.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	for ev := range events {
		conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := conn.WriteJSON(ev); err != nil {
			h.logger.Debug("ws client gone", xlogger.String("run_id", runID), xlogger.Error(err))
			return nil
		}
	}

	conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "run finished"))
	return nil
}

func (h *ProgressWSHandler) replay(conn *websocket.Conn, res *models.BacktestResult) error {
	for _, pt := range res.EquityCurve {
		conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		ev := progress.Event{
			RunID:  res.ID,
			Stage:  progress.StageSimulating,
			Date:   pt.Date,
			Equity: pt.Equity,
		}
		if err := conn.WriteJSON(ev); err != nil {
			return nil
		}
	}
	final := progress.Event{RunID: res.ID, Stage: progress.StageDone}
	if res.Status == models.RunFailed {
		final = progress.Event{RunID: res.ID, Stage: progress.StageFailed, Error: res.Err}
	}
	conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	_ = conn.WriteJSON(final)
	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "run finished"))
	return nil
}
