// Package http serves the client session channel. Each WebSocket connection owns one
// appstate.Store; client messages are dispatched into it and every resulting state is
// rendered and pushed back.
package http

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/alightgram/alightgram-backend/internal/appstate"
	"github.com/alightgram/alightgram-backend/internal/auth"
	authdomain "github.com/alightgram/alightgram-backend/internal/auth/domain"
	authservice "github.com/alightgram/alightgram-backend/internal/auth/service"
	"github.com/alightgram/alightgram-backend/internal/live"
	"github.com/alightgram/alightgram-backend/internal/logging"
	"github.com/alightgram/alightgram-backend/internal/projects/domain"
	"github.com/alightgram/alightgram-backend/internal/projects/service"
	usersdomain "github.com/alightgram/alightgram-backend/internal/users/domain"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	outBuffer  = 16
)

var errSessionClosed = errors.New("session closed by client")

type Handler struct {
	feed     *service.FeedService
	likes    *service.LikeService
	sessions *authservice.SessionService
	upgrader websocket.Upgrader
}

func New(feed *service.FeedService, likes *service.LikeService, sessions *authservice.SessionService) *Handler {
	return &Handler{
		feed:     feed,
		likes:    likes,
		sessions: sessions,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Register mounts the session channel. optionalUser resumes an already signed-in client.
func (h *Handler) Register(rg *gin.RouterGroup, optionalUser gin.HandlerFunc) {
	rg.GET("/session", optionalUser, h.serve)
}

func (h *Handler) serve(c *gin.Context) {
	ctx := c.Request.Context()
	log := logging.FromContext(ctx)

	session := h.sessions.NewSession()
	var user *usersdomain.UserProfile
	if uid := auth.UserFirebaseUID(c); uid != "" {
		p, err := h.sessions.CurrentProfile(ctx, uid)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
			return
		}
		session = h.sessions.ResumeSession(authdomain.Identity{
			UID:         p.UID,
			Email:       p.Email,
			DisplayName: p.DisplayName,
			PhotoURL:    p.PhotoURL,
		})
		user = p
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	cs := &clientSession{
		h:       h,
		conn:    conn,
		session: session,
		store:   appstate.NewStore(appstate.Initial(user)),
		out:     make(chan serverMessage, outBuffer),
		likes:   make(map[string]*service.LikeView),
	}
	if err := cs.run(ctx); err != nil {
		log.Debug("client session ended", zap.Error(err))
	}
}

// clientSession is one connected client.
type clientSession struct {
	h       *Handler
	conn    *websocket.Conn
	session *authservice.Session
	store   *appstate.Store
	out     chan serverMessage
	watcher *live.Watcher[service.FeedKey, service.FeedState]

	mu    sync.Mutex
	likes map[string]*service.LikeView
}

func (cs *clientSession) run(parent context.Context) error {
	g, ctx := errgroup.WithContext(parent)

	w := cs.h.feed.Watcher(ctx)
	defer w.Stop()
	cs.watcher = w
	cs.syncFeed()

	g.Go(func() error { return cs.readLoop(ctx) })
	g.Go(func() error { return cs.feedLoop(ctx) })
	g.Go(func() error { return cs.writeLoop(ctx) })

	err := g.Wait()
	if errors.Is(err, errSessionClosed) {
		return nil
	}
	return err
}

// readLoop applies client messages in arrival order.
func (cs *clientSession) readLoop(ctx context.Context) error {
	cs.conn.SetReadLimit(64 << 10)
	_ = cs.conn.SetReadDeadline(time.Now().Add(pongWait))
	cs.conn.SetPongHandler(func(string) error {
		return cs.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg clientMessage
		if err := cs.conn.ReadJSON(&msg); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return errSessionClosed
			}
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		cs.handle(ctx, msg)
	}
}

// feedLoop feeds live collection states into the store. Local like views are dropped on
// every state so the next toggle starts from stored counts.
func (cs *clientSession) feedLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case st, ok := <-cs.watcher.Updates():
			if !ok {
				return nil
			}
			cs.store.Dispatch(appstate.FeedUpdated{Feed: st})
			if !st.Loading {
				cs.resetLikes()
			}
		}
	}
}

// writeLoop is the only writer on the connection.
func (cs *clientSession) writeLoop(ctx context.Context) error {
	states, cancel := cs.store.Subscribe()
	defer cancel()
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()
	defer cs.conn.Close()

	for {
		select {
		case <-ctx.Done():
			_ = cs.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			return nil

		case <-ping.C:
			if err := cs.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return err
			}

		case st := <-states:
			r := appstate.Render(st)
			if err := cs.write(serverMessage{Type: msgState, State: &r}); err != nil {
				return err
			}

		case msg := <-cs.out:
			if err := cs.write(msg); err != nil {
				return err
			}
		}
	}
}

func (cs *clientSession) write(msg serverMessage) error {
	_ = cs.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return cs.conn.WriteJSON(msg)
}

func (cs *clientSession) send(ctx context.Context, msg serverMessage) {
	select {
	case cs.out <- msg:
	case <-ctx.Done():
	}
}

func (cs *clientSession) handle(ctx context.Context, msg clientMessage) {
	switch msg.Type {
	case msgSetView:
		view, err := domain.ParseView(msg.View)
		if err != nil {
			cs.send(ctx, errorMessage(msg.Type, err))
			return
		}
		if view == domain.ViewProfile && cs.store.State().User == nil {
			cs.send(ctx, errorMessage(msg.Type, service.ErrSignInRequired))
			return
		}
		cs.dispatch(appstate.ViewSelected{View: view})

	case msgSetGenre:
		cs.dispatch(appstate.GenreSelected{Genre: msg.Genre})

	case msgSetQuery:
		cs.dispatch(appstate.QueryChanged{Query: msg.Query})

	case msgUploadSucceeded:
		cs.dispatch(appstate.UploadSucceeded{})

	case msgToggleLike:
		cs.toggleLike(ctx, msg)

	case msgSignIn:
		res, err := cs.session.SignInWithPassword(ctx, msg.Email, msg.Password)
		cs.signedIn(ctx, msg.Type, res, err)

	case msgSignInGoogle:
		res, err := cs.session.SignInWithGoogle(ctx, msg.IDToken, msg.Code)
		cs.signedIn(ctx, msg.Type, res, err)

	case msgSignOut:
		err := cs.session.SignOut(ctx)
		if errors.Is(err, authdomain.ErrInvalidTransition) {
			cs.send(ctx, errorMessage(msg.Type, err))
			return
		}
		if err != nil {
			logging.FromContext(ctx).Warn("token revocation failed", zap.Error(err))
		}
		cs.resetLikes()
		cs.dispatch(appstate.SignedOut{})
		cs.send(ctx, serverMessage{Type: msgSession, Session: &sessionPayload{State: cs.session.State()}})

	default:
		cs.send(ctx, serverMessage{Type: msgError, Action: msg.Type, Error: "unknown message type"})
	}
}

func (cs *clientSession) signedIn(ctx context.Context, action string, res *authservice.AuthResult, err error) {
	if err != nil {
		cs.send(ctx, errorMessage(action, err))
		return
	}
	cs.resetLikes()
	cs.dispatch(appstate.SignedIn{User: res.Profile})
	cs.send(ctx, serverMessage{Type: msgSession, Session: &sessionPayload{
		State:        cs.session.State(),
		IDToken:      res.IDToken,
		RefreshToken: res.RefreshToken,
		ExpiresIn:    res.ExpiresIn,
	}})
}

func (cs *clientSession) toggleLike(ctx context.Context, msg clientMessage) {
	st := cs.store.State()
	uid := st.UID()
	if uid == "" {
		cs.send(ctx, errorMessage(msg.Type, service.ErrSignInRequired))
		return
	}
	v := cs.likeView(st, msg.ProjectID)
	if v == nil {
		cs.send(ctx, errorMessage(msg.Type, domain.ErrNotFound))
		return
	}
	ls, err := cs.h.likes.Toggle(ctx, v, uid)
	cs.send(ctx, serverMessage{Type: msgLike, ProjectID: msg.ProjectID, Like: &ls})
	if err != nil {
		cs.send(ctx, errorMessage(msg.Type, err))
	}
}

// likeView returns the local like view of a project in the current collection, seeding it
// from the latest snapshot.
func (cs *clientSession) likeView(st appstate.State, id string) *service.LikeView {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if v, ok := cs.likes[id]; ok {
		return v
	}
	for i := range st.Projects {
		if st.Projects[i].ID == id {
			v := service.NewLikeView(&st.Projects[i], st.UID())
			cs.likes[id] = v
			return v
		}
	}
	return nil
}

func (cs *clientSession) resetLikes() {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	clear(cs.likes)
}

// dispatch applies a and moves the feed subscription to the collection the new state shows.
func (cs *clientSession) dispatch(a appstate.Action) {
	cs.store.Dispatch(a)
	cs.syncFeed()
}

func (cs *clientSession) syncFeed() {
	cs.watcher.Watch(cs.store.State().FeedKey())
}
