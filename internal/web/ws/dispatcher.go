package ws

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/mcoot/boardbank/internal/api/apierr"
	"github.com/mcoot/boardbank/internal/model"
	"github.com/mcoot/boardbank/internal/msgcat"
	"github.com/mcoot/boardbank/internal/services/fanout"
)

// Sessions issues sessions
type Sessions interface {
	Login(ctx context.Context, username string) (*model.Session, error)
}

// Rooms manages game membership and lifecycle
type Rooms interface {
	CreateGame(ctx context.Context, conn model.ConnectionID, sessionID model.SessionID, raw model.RawSettings) (model.GameID, error)
	JoinGame(ctx context.Context, conn model.ConnectionID, sessionID model.SessionID, id model.GameID) error
	LeaveGame(ctx context.Context, conn model.ConnectionID) error
	Disconnect(ctx context.Context, conn model.ConnectionID) error
	UpdateSettings(ctx context.Context, conn model.ConnectionID, id model.GameID, patch model.RawSettings) error
	StartGame(ctx context.Context, conn model.ConnectionID, id model.GameID) error
	FinishGame(ctx context.Context, conn model.ConnectionID, id model.GameID) error
	JoinLobby(ctx context.Context, conn model.ConnectionID) error
	LeaveLobby(conn model.ConnectionID)
	SendLobbyGames(ctx context.Context, conn model.ConnectionID) error
}

// Ledger applies balance-changing operations
type Ledger interface {
	TransferToPlayer(ctx context.Context, conn model.ConnectionID, req model.TransferToPlayerRequest) error
	TransferToBank(ctx context.Context, conn model.ConnectionID, req model.TransferToBankRequest) error
	TransferFromBank(ctx context.Context, conn model.ConnectionID, req model.TransferFromBankRequest) error
	PassGo(ctx context.Context, conn model.ConnectionID, req model.PassGoRequest) error
}

// Dispatcher routes inbound events to the services and turns failures into
// error events
type Dispatcher struct {
	sessions Sessions
	rooms    Rooms
	ledger   Ledger
	notifier fanout.Notifier
	catalog  *msgcat.Catalog
	logger   *slog.Logger
	drops    atomic.Int64
}

// NewDispatcher creates a new Dispatcher
func NewDispatcher(sessions Sessions, rooms Rooms, ledger Ledger, notifier fanout.Notifier, catalog *msgcat.Catalog, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		sessions: sessions,
		rooms:    rooms,
		ledger:   ledger,
		notifier: notifier,
		catalog:  catalog,
		logger:   logger.With(slog.String("component", "ws_dispatcher")),
	}
}

// Drops returns how many requests were silently dropped
func (d *Dispatcher) Drops() int64 {
	return d.drops.Load()
}

// Handle processes one inbound frame from conn
func (d *Dispatcher) Handle(ctx context.Context, conn model.ConnectionID, frame []byte) {
	env, err := decodeEnvelope(frame)
	if err != nil {
		d.drop(conn, "", err.Error())
		return
	}

	if err := d.route(ctx, conn, env); err != nil {
		d.fail(conn, env.Event, err)
	}
}

// Disconnected releases everything held by a closed connection
func (d *Dispatcher) Disconnected(ctx context.Context, conn model.ConnectionID) {
	if err := d.rooms.Disconnect(ctx, conn); err != nil {
		d.logger.Error("disconnect cleanup failed",
			slog.String("connection_id", string(conn)),
			slog.String("error", err.Error()))
	}
}

func (d *Dispatcher) route(ctx context.Context, conn model.ConnectionID, env Envelope) error {
	switch env.Event {
	case model.EventLogin:
		var req model.LoginRequest
		if err := decodeData(env.Data, &req); err != nil {
			return model.Ignored(err.Error())
		}
		// Non-string usernames are treated as missing
		username, _ := req.Username.(string)
		session, err := d.sessions.Login(ctx, username)
		if err != nil {
			return err
		}
		d.notifier.Send(conn, model.EventLoginSuccess, model.LoginSuccessPayload{
			SessionID: session.ID,
			PlayerID:  session.ID,
			Username:  session.Username,
		})
		return nil

	case model.EventCreateGame:
		var req model.CreateGameRequest
		if err := decodeData(env.Data, &req); err != nil {
			return model.Ignored(err.Error())
		}
		_, err := d.rooms.CreateGame(ctx, conn, req.Session(), req.Settings)
		return err

	case model.EventJoinGame:
		var req model.JoinGameRequest
		if err := decodeData(env.Data, &req); err != nil {
			return model.Ignored(err.Error())
		}
		return d.rooms.JoinGame(ctx, conn, req.Session(), req.GameID)

	case model.EventLeaveGame:
		if err := d.rooms.LeaveGame(ctx, conn); err != nil {
			d.logger.Error("leave game failed",
				slog.String("connection_id", string(conn)),
				slog.String("error", err.Error()))
		}
		d.notifier.Send(conn, model.EventLeaveGameSuccess, model.EmptyPayload{})
		return nil

	case model.EventJoinLobby:
		return d.rooms.JoinLobby(ctx, conn)

	case model.EventLeaveLobby:
		d.rooms.LeaveLobby(conn)
		return nil

	case model.EventGetLobbyGames:
		return d.rooms.SendLobbyGames(ctx, conn)

	case model.EventUpdateGameSettings:
		var req model.UpdateSettingsRequest
		if err := decodeData(env.Data, &req); err != nil {
			return model.Ignored(err.Error())
		}
		return d.rooms.UpdateSettings(ctx, conn, req.GameID, req.Settings)

	case model.EventStartGame, model.EventFinishGame:
		var req model.GameRequest
		if err := decodeData(env.Data, &req); err != nil {
			return model.Ignored(err.Error())
		}
		if env.Event == model.EventStartGame {
			return d.rooms.StartGame(ctx, conn, req.GameID)
		}
		return d.rooms.FinishGame(ctx, conn, req.GameID)

	case model.EventTransferToPlayer:
		var req model.TransferToPlayerRequest
		if err := decodeData(env.Data, &req); err != nil {
			return model.Ignored(err.Error())
		}
		return d.ledger.TransferToPlayer(ctx, conn, req)

	case model.EventTransferToBank:
		var req model.TransferToBankRequest
		if err := decodeData(env.Data, &req); err != nil {
			return model.Ignored(err.Error())
		}
		return d.ledger.TransferToBank(ctx, conn, req)

	case model.EventTransferFromBank:
		var req model.TransferFromBankRequest
		if err := decodeData(env.Data, &req); err != nil {
			return model.Ignored(err.Error())
		}
		return d.ledger.TransferFromBank(ctx, conn, req)

	case model.EventPassGo:
		var req model.PassGoRequest
		if err := decodeData(env.Data, &req); err != nil {
			return model.Ignored(err.Error())
		}
		return d.ledger.PassGo(ctx, conn, req)

	default:
		return model.Ignored("unknown event")
	}
}

// fail reports err to the requester, or drops it silently when it is a
// routing or identity violation
func (d *Dispatcher) fail(conn model.ConnectionID, event model.EventType, err error) {
	if errors.Is(err, model.ErrIgnored) {
		d.drop(conn, event, err.Error())
		return
	}

	_, apiErr := apierr.Describe(d.catalog, err)
	if apiErr.Code == apierr.CodeInternalError {
		d.logger.Error("request failed",
			slog.String("connection_id", string(conn)),
			slog.String("event", string(event)),
			slog.String("error", err.Error()))
	} else {
		d.logger.Debug("request rejected",
			slog.String("connection_id", string(conn)),
			slog.String("event", string(event)),
			slog.String("code", apiErr.Code))
	}

	reply, ok := model.ErrorEvent(event)
	if !ok {
		reply = model.EventError
	}
	d.notifier.Send(conn, reply, model.ErrorPayload{Code: apiErr.Code, Message: apiErr.Message})
}

func (d *Dispatcher) drop(conn model.ConnectionID, event model.EventType, reason string) {
	d.drops.Add(1)
	d.logger.Warn("request dropped",
		slog.String("connection_id", string(conn)),
		slog.String("event", string(event)),
		slog.String("reason", reason))
}
