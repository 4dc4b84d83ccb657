// Package boardsync keeps an in-memory board in step with the server using
// optimistic mutation: apply the predicted result locally, send the request,
// then structurally replace with the server's answer or restore the saved
// snapshot verbatim. Every attempt is in exactly one state of an explicit
// union; there is no boolean flag to drift out of sync with the data.
package boardsync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"sync"
	"time"

	"boardhub/internal/httpapi"
	"boardhub/internal/position"

	"github.com/sirupsen/logrus"
)

// AttemptKind tags the state of the current sync attempt.
type AttemptKind int

const (
	// Idle means no mutation is in flight and the board reflects the last
	// confirmed server state.
	Idle AttemptKind = iota
	// Pending means a predicted result is applied locally and the request
	// is in flight.
	Pending
	// Confirmed means the last attempt was accepted and the server's
	// projection has structurally replaced the prediction.
	Confirmed
	// Reverted means the last attempt failed and the pre-gesture snapshot
	// was restored verbatim.
	Reverted
)

func (k AttemptKind) String() string {
	switch k {
	case Idle:
		return "idle"
	case Pending:
		return "pending"
	case Confirmed:
		return "confirmed"
	case Reverted:
		return "reverted"
	}
	return fmt.Sprintf("attempt(%d)", int(k))
}

// snapshot is the verbatim pre-gesture record needed to undo one mutation:
// the task exactly as it was, and which column it sat in.
type snapshot struct {
	task         httpapi.TaskProjection
	sourceStatus int
}

// attempt is the tagged union: kind says which fields are meaningful.
// Pending carries the prediction and snapshot; the terminal kinds carry
// only the task id they concluded for.
type attempt struct {
	kind      AttemptKind
	taskID    uint
	predicted httpapi.TaskProjection
	snap      snapshot
}

// DefaultRefreshDebounce is how long after a gesture background refresh
// stays gated.
const DefaultRefreshDebounce = 500 * time.Millisecond

// Client is the optimistic board-sync client. All exported methods are safe
// for concurrent use; superseding gestures are not cancelled, the last
// response to arrive wins.
type Client struct {
	baseURL  string
	token    string
	http     *http.Client
	log      *logrus.Logger
	debounce time.Duration

	mu        sync.Mutex
	projectID uint
	columns   []httpapi.BoardColumn
	attempt   attempt
	suspended bool
	resumeAt  time.Time
}

// Options configures a Client.
type Options struct {
	BaseURL         string
	Token           string
	ProjectID       uint
	HTTPClient      *http.Client
	Log             *logrus.Logger
	RefreshDebounce time.Duration
}

// New builds a Client. The board is empty until the first Refresh.
func New(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	log := opts.Log
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}
	debounce := opts.RefreshDebounce
	if debounce <= 0 {
		debounce = DefaultRefreshDebounce
	}
	return &Client{
		baseURL:   opts.BaseURL,
		token:     opts.Token,
		http:      httpClient,
		log:       log,
		debounce:  debounce,
		projectID: opts.ProjectID,
		attempt:   attempt{kind: Idle},
	}
}

// State reports the current attempt state.
func (c *Client) State() AttemptKind {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attempt.kind
}

// Columns returns a deep copy of the board columns.
func (c *Client) Columns() []httpapi.BoardColumn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return copyColumns(c.columns)
}

func copyColumns(cols []httpapi.BoardColumn) []httpapi.BoardColumn {
	out := make([]httpapi.BoardColumn, len(cols))
	for i, col := range cols {
		out[i] = col
		out[i].Tasks = append([]httpapi.TaskProjection(nil), col.Tasks...)
	}
	return out
}

// SuspendRefresh gates background refresh for the duration of a gesture.
func (c *Client) SuspendRefresh() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.suspended = true
}

// ResumeRefresh lifts the gate after the debounce window, so a refresh
// racing the tail of a drop gesture cannot clobber the prediction.
func (c *Client) ResumeRefresh() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.suspended = false
	c.resumeAt = time.Now().Add(c.debounce)
}

func (c *Client) refreshGated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.suspended || time.Now().Before(c.resumeAt)
}

// Refresh fetches the full board and structurally replaces local state.
// Gated while a gesture is in progress or within the debounce window.
func (c *Client) Refresh(ctx context.Context) error {
	if c.refreshGated() {
		return nil
	}

	path := fmt.Sprintf("/api/projects/%d/board", c.projectID)
	var board httpapi.BoardResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &board); err != nil {
		return fmt.Errorf("boardsync: refresh: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.columns = copyColumns(board.Columns)
	return nil
}

// MoveTask optimistically moves a task into targetStatus before the task
// with beforeTaskID (0 appends to the end of the column), then reconciles
// with the server's verdict.
func (c *Client) MoveTask(ctx context.Context, taskID uint, targetStatus int, beforeTaskID uint) error {
	c.mu.Lock()
	colIdx, taskIdx := c.locate(taskID)
	if colIdx < 0 {
		c.mu.Unlock()
		return fmt.Errorf("boardsync: task %d is not on the board", taskID)
	}
	target := c.columnByStatus(targetStatus)
	if target < 0 {
		c.mu.Unlock()
		return fmt.Errorf("boardsync: no column for status %d", targetStatus)
	}

	original := c.columns[colIdx].Tasks[taskIdx]
	snap := snapshot{task: original, sourceStatus: c.columns[colIdx].Status}

	newPos := c.targetPosition(target, taskID, beforeTaskID)
	predicted := original
	predicted.Status = targetStatus
	predicted.StatusName = c.columns[target].Title
	predicted.Position = newPos

	c.removeTask(taskID)
	c.insertTask(target, predicted)
	c.attempt = attempt{kind: Pending, taskID: taskID, predicted: predicted, snap: snap}
	c.mu.Unlock()

	path := fmt.Sprintf("/api/projects/%d/tasks/%d/reorder", c.projectID, taskID)
	body := map[string]interface{}{"status": targetStatus, "position": newPos}
	var confirmed httpapi.TaskProjection
	err := c.do(ctx, http.MethodPut, path, body, &confirmed)
	c.reconcile(taskID, snap, &confirmed, err)
	return err
}

// SaveTask optimistically applies a partial edit and reconciles. updates is
// the wire shape of the task update request.
func (c *Client) SaveTask(ctx context.Context, taskID uint, updates map[string]interface{}) error {
	c.mu.Lock()
	colIdx, taskIdx := c.locate(taskID)
	if colIdx < 0 {
		c.mu.Unlock()
		return fmt.Errorf("boardsync: task %d is not on the board", taskID)
	}

	original := c.columns[colIdx].Tasks[taskIdx]
	snap := snapshot{task: original, sourceStatus: c.columns[colIdx].Status}

	predicted := original
	if v, ok := updates["title"].(string); ok {
		predicted.Title = v
	}
	if v, ok := updates["description"].(string); ok {
		predicted.Description = v
	}
	if v, ok := updates["priority"].(int); ok {
		predicted.Priority = v
	}

	c.columns[colIdx].Tasks[taskIdx] = predicted
	c.attempt = attempt{kind: Pending, taskID: taskID, predicted: predicted, snap: snap}
	c.mu.Unlock()

	path := fmt.Sprintf("/api/projects/%d/tasks/%d", c.projectID, taskID)
	var confirmed httpapi.TaskProjection
	err := c.do(ctx, http.MethodPut, path, updates, &confirmed)
	c.reconcile(taskID, snap, &confirmed, err)
	return err
}

// reconcile settles one attempt: structural replace by id on success,
// verbatim snapshot restore on any failure. It is the only place attempt
// state transitions out of Pending. A response for a superseded attempt
// still applies (last wins), which is why each call carries its own
// snapshot rather than reading it off the shared attempt.
func (c *Client) reconcile(taskID uint, snap snapshot, confirmed *httpapi.TaskProjection, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.removeTask(taskID)
		if src := c.columnByStatus(snap.sourceStatus); src >= 0 {
			c.insertTask(src, snap.task)
		}
		c.attempt = attempt{kind: Reverted, taskID: taskID}
		c.log.WithError(err).WithField("task", taskID).Warn("mutation reverted")
		return
	}

	c.removeTask(taskID)
	if target := c.columnByStatus(confirmed.Status); target >= 0 {
		c.insertTask(target, *confirmed)
	}
	c.attempt = attempt{kind: Confirmed, taskID: taskID}
}

// locate finds a task's column and index, or (-1, -1).
func (c *Client) locate(taskID uint) (int, int) {
	for i := range c.columns {
		for j := range c.columns[i].Tasks {
			if c.columns[i].Tasks[j].ID == taskID {
				return i, j
			}
		}
	}
	return -1, -1
}

func (c *Client) columnByStatus(status int) int {
	for i := range c.columns {
		if c.columns[i].Status == status {
			return i
		}
	}
	return -1
}

// targetPosition computes the drop position in the target column using the
// allocator math, ignoring the moving task itself.
func (c *Client) targetPosition(target int, movingID, beforeTaskID uint) float64 {
	tasks := c.columns[target].Tasks
	others := make([]httpapi.TaskProjection, 0, len(tasks))
	for _, t := range tasks {
		if t.ID != movingID {
			others = append(others, t)
		}
	}

	if beforeTaskID == 0 || len(others) == 0 {
		positions := make([]float64, len(others))
		for i, t := range others {
			positions[i] = t.Position
		}
		return position.Append(positions)
	}

	for i, t := range others {
		if t.ID != beforeTaskID {
			continue
		}
		if i == 0 {
			return position.Before(t.Position)
		}
		return position.Between(others[i-1].Position, t.Position)
	}
	// beforeTaskID vanished under us; fall back to appending.
	positions := make([]float64, len(others))
	for i, t := range others {
		positions[i] = t.Position
	}
	return position.Append(positions)
}

// removeTask drops the task from whichever column holds it.
func (c *Client) removeTask(taskID uint) {
	for i := range c.columns {
		tasks := c.columns[i].Tasks
		for j := range tasks {
			if tasks[j].ID == taskID {
				c.columns[i].Tasks = append(tasks[:j:j], tasks[j+1:]...)
				return
			}
		}
	}
}

// insertTask places the task into a column keeping position order.
func (c *Client) insertTask(col int, t httpapi.TaskProjection) {
	tasks := append(c.columns[col].Tasks, t)
	sort.SliceStable(tasks, func(i, j int) bool {
		if tasks[i].Position != tasks[j].Position {
			return tasks[i].Position < tasks[j].Position
		}
		return tasks[i].ID < tasks[j].ID
	})
	c.columns[col].Tasks = tasks
}

// statusError is a non-2xx server verdict.
type statusError struct {
	Code int
	Body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Code, e.Body)
}

// do sends one JSON request and decodes a JSON response.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &statusError{Code: resp.StatusCode, Body: string(bytes.TrimSpace(data))}
	}
	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
