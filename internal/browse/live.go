package browse

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/ziadkadry99/compatbrowse/internal/model"
	"github.com/ziadkadry99/compatbrowse/internal/pagination"
)

// liveList is the pagination state a WebSocket session owns.
type liveList interface {
	loadThrough(ctx context.Context, pages int) error
	// more loads the next page. ok is false when there was nothing to load.
	more(ctx context.Context) (rows []Row, ok bool, err error)
	reset()
	state() pagination.State
}

type liveSession[T model.Record] struct {
	c    *typedCatalog[T]
	list *pagination.List[T]
}

func (s *liveSession[T]) loadThrough(ctx context.Context, pages int) error {
	return s.list.LoadThrough(ctx, pages)
}

func (s *liveSession[T]) more(ctx context.Context) ([]Row, bool, error) {
	before := s.list.State().Loaded
	req := s.list.LoadMore(ctx)
	if req == nil {
		return nil, false, nil
	}
	if err := req.Wait(ctx); err != nil {
		return nil, true, err
	}
	return s.c.rows(ctx, s.list.Since(before)), true, nil
}

func (s *liveSession[T]) reset()                  { s.list.ResetLoadMore() }
func (s *liveSession[T]) state() pagination.State { return s.list.State() }

// liveRequest is the incoming WebSocket message format.
type liveRequest struct {
	Type string `json:"type"` // "load_more", "reset" or "state"
}

// liveResponse is the outgoing WebSocket message format.
type liveResponse struct {
	Type  string            `json:"type"` // "state", "records", "done" or "error"
	Rows  []Row             `json:"rows,omitempty"`
	State *pagination.State `json:"state,omitempty"`
	Error string            `json:"error,omitempty"`
}

// handleLive runs a load-more session for one list view. The optional page
// query parameter tells the session how many pages the client already shows.
func (h *Handler) handleLive(w http.ResponseWriter, r *http.Request) {
	c, ok := h.catalogs[chi.URLParam(r, "plural")]
	if !ok {
		h.notFound(w, "No such resource type.")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("browse: websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	// The session outlives the request timeout and ends with the connection.
	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	defer cancel()

	sess := c.session()
	if err := sess.loadThrough(ctx, parsePage(r.URL.Query().Get("page"))); err != nil {
		log.Printf("browse: live %s: %v", c.plural(), err)
		h.sendLive(conn, liveResponse{Type: "error", Error: "loading records failed"})
		return
	}
	h.sendState(conn, sess)

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("browse: websocket read: %v", err)
			}
			return
		}

		var req liveRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			h.sendLive(conn, liveResponse{Type: "error", Error: "invalid message format"})
			continue
		}

		switch req.Type {
		case "load_more":
			h.loadMore(ctx, conn, sess)
		case "reset":
			sess.reset()
			h.sendState(conn, sess)
		case "state":
			h.sendState(conn, sess)
		default:
			h.sendLive(conn, liveResponse{Type: "error", Error: "unknown message type: " + req.Type})
		}
	}
}

func (h *Handler) loadMore(ctx context.Context, conn *websocket.Conn, sess liveList) {
	rows, ok, err := sess.more(ctx)
	if err != nil {
		log.Printf("browse: load more: %v", err)
		st := sess.state()
		h.sendLive(conn, liveResponse{Type: "error", State: &st, Error: "loading more records failed"})
		return
	}
	if !ok {
		st := sess.state()
		h.sendLive(conn, liveResponse{Type: "done", State: &st, Error: pagination.ErrNothingToLoad.Error()})
		return
	}

	st := sess.state()
	h.sendLive(conn, liveResponse{Type: "records", Rows: rows, State: &st})
	if !st.CanLoadMore() {
		h.sendLive(conn, liveResponse{Type: "done", State: &st})
	}
}

func (h *Handler) sendState(conn *websocket.Conn, sess liveList) {
	st := sess.state()
	h.sendLive(conn, liveResponse{Type: "state", State: &st})
}

func (h *Handler) sendLive(conn *websocket.Conn, resp liveResponse) {
	if err := conn.WriteJSON(resp); err != nil {
		log.Printf("browse: websocket write: %v", err)
	}
}
