package handlers

import (
	"context"
	"encoding/json"
	"time"

	fiberws "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/trentd187/cup-trip/internal/websocket"
)

const snapshotTimeout = 5 * time.Second

// Watchers is the hub as seen by the live endpoint.
type Watchers interface {
	Register(client *websocket.Client)
	Unregister(client *websocket.Client)
}

// LiveMatchUpgrade guards GET /ws/matches/:matchID. It rejects plain HTTP requests with 426 and
// unknown matches with 404 before the connection is upgraded.
func LiveMatchUpgrade(scorer Scorer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !fiberws.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		matchID, ok, err := paramID(c, "matchID")
		if !ok {
			return err
		}

		if _, err := scorer.MatchSummary(c.UserContext(), matchID); err != nil {
			return writeError(c, err)
		}
		c.Locals("logger", zerolog.Ctx(c.UserContext()))
		return c.Next()
	}
}

// LiveMatch streams match summaries to a WebSocket client: the current summary on connect,
// then a fresh one every time the match's ledger changes. The client is registered with the hub
// before the first summary is read, so no change in between goes unseen. The connection ends
// when the client goes away or the hub drops it for falling behind.
func LiveMatch(hub Watchers, scorer Scorer) fiber.Handler {
	return fiberws.New(func(conn *fiberws.Conn) {
		id := uuid.MustParse(conn.Params("matchID"))
		matchID := id.String()
		log, _ := conn.Locals("logger").(*zerolog.Logger)
		if log == nil {
			nop := zerolog.Nop()
			log = &nop
		}

		client := websocket.NewClient(matchID)
		hub.Register(client)
		defer hub.Unregister(client)

		ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
		summary, err := scorer.MatchSummary(ctx, id)
		cancel()
		if err != nil {
			log.Warn().Err(err).Str("match_id", matchID).Msg("live watcher snapshot failed")
			return
		}
		snapshot, err := json.Marshal(summary)
		if err != nil {
			log.Error().Err(err).Str("match_id", matchID).Msg("failed to encode match summary")
			return
		}
		if err := conn.WriteMessage(fiberws.TextMessage, snapshot); err != nil {
			return
		}

		// The reader only exists to notice the client closing the connection.
		closed := make(chan struct{})
		go func() {
			defer close(closed)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		log.Debug().Str("match_id", matchID).Msg("live watcher connected")
		for {
			select {
			case data, ok := <-client.Send:
				if !ok {
					return
				}
				if err := conn.WriteMessage(fiberws.TextMessage, data); err != nil {
					log.Debug().Err(err).Str("match_id", matchID).Msg("live watcher write failed")
					return
				}
			case <-closed:
				log.Debug().Str("match_id", matchID).Msg("live watcher disconnected")
				return
			}
		}
	})
}
