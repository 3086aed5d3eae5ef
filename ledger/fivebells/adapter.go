// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package fivebells

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/bureau-foundation/ledgerclient/ledger"
	"github.com/bureau-foundation/ledgerclient/lib/address"
	"github.com/bureau-foundation/ledgerclient/lib/clock"
	"github.com/bureau-foundation/ledgerclient/lib/money"
	"github.com/bureau-foundation/ledgerclient/lib/netutil"
	"github.com/bureau-foundation/ledgerclient/lib/secret"
	"github.com/bureau-foundation/ledgerclient/lib/version"
)

// eventBuffer is the capacity of the events channel.
const eventBuffer = 64

// Config holds configuration for creating an Adapter.
type Config struct {
	// URL is the ledger's base URL, which serves the metadata document.
	URL string

	// Account is the local account name, relative to the ledger prefix.
	Account string

	// Username and Password are sent as HTTP basic authentication on
	// every request and the websocket handshake. Username defaults to
	// Account. The caller keeps ownership of Password and closes it
	// after the adapter.
	Username string
	Password *secret.Buffer

	// RequestTimeout bounds each HTTP request and the websocket
	// handshake. Default: 30s.
	RequestTimeout time.Duration

	// KeepaliveInterval is the websocket ping interval. Default: 30s.
	KeepaliveInterval time.Duration

	// HTTPClient is used for REST calls. If nil, a client with
	// RequestTimeout is created.
	HTTPClient *http.Client

	// Clock drives the keepalive ticker. If nil, the real clock is used.
	Clock clock.Clock

	// Logger is used for structured logging. If nil, slog.Default() is used.
	Logger *slog.Logger
}

// Adapter is a ledger.Adapter for a five-bells ledger.
type Adapter struct {
	baseURL    string
	account    string
	username   string
	password   *secret.Buffer
	timeout    time.Duration
	keepalive  time.Duration
	httpClient *http.Client
	clock      clock.Clock
	logger     *slog.Logger

	events chan ledger.Event
	done   chan struct{}

	// loops tracks the read and keepalive goroutines.
	loops sync.WaitGroup

	// writeMu serializes data frames on conn. Control frames do not
	// need it.
	writeMu sync.Mutex

	mu       sync.Mutex
	metadata metadata
	info     ledger.Info
	address  address.Address
	conn     *websocket.Conn
	closed   bool
}

var _ ledger.Adapter = (*Adapter)(nil)

// New creates an Adapter. No network traffic happens until Connect.
func New(config Config) (*Adapter, error) {
	if config.URL == "" {
		return nil, fmt.Errorf("fivebells: URL is required")
	}
	if _, err := url.Parse(config.URL); err != nil {
		return nil, fmt.Errorf("fivebells: invalid URL %q: %w", config.URL, err)
	}
	if config.Account == "" {
		return nil, fmt.Errorf("fivebells: Account is required")
	}

	timeout := config.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	keepalive := config.KeepaliveInterval
	if keepalive <= 0 {
		keepalive = 30 * time.Second
	}
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	adapterClock := config.Clock
	if adapterClock == nil {
		adapterClock = clock.Real()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	username := config.Username
	if username == "" {
		username = config.Account
	}

	return &Adapter{
		baseURL:    strings.TrimRight(config.URL, "/"),
		account:    config.Account,
		username:   username,
		password:   config.Password,
		timeout:    timeout,
		keepalive:  keepalive,
		httpClient: httpClient,
		clock:      adapterClock,
		logger:     logger.With("ledger", config.URL),
		events:     make(chan ledger.Event, eventBuffer),
		done:       make(chan struct{}),
	}, nil
}

// Connect fetches the ledger metadata, opens the notification
// websocket and subscribes to the local account. The ConnectEvent is
// emitted when the ledger greets the websocket.
func (a *Adapter) Connect(ctx context.Context) error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return ledger.ErrClosed
	}
	if a.conn != nil {
		a.mu.Unlock()
		return fmt.Errorf("fivebells: already connected")
	}
	a.mu.Unlock()

	meta, info, err := a.fetchMetadata(ctx)
	if err != nil {
		return err
	}
	account, err := info.Prefix.Join(a.account)
	if err != nil {
		return fmt.Errorf("fivebells: account %q: %w", a.account, err)
	}
	if meta.URLs.Websocket == "" || meta.URLs.Account == "" {
		return fmt.Errorf("fivebells: ledger metadata lacks websocket or account URL")
	}

	dialer := websocket.Dialer{HandshakeTimeout: a.timeout}
	header := http.Header{}
	header.Set("Authorization", a.basicAuth())
	header.Set("User-Agent", version.UserAgent())
	conn, response, err := dialer.DialContext(ctx, meta.URLs.Websocket, header)
	if response != nil && response.Body != nil {
		response.Body.Close()
	}
	if err != nil {
		if response != nil {
			return &ledger.TransferError{Status: response.StatusCode, Message: "websocket handshake rejected", Err: err}
		}
		return fmt.Errorf("fivebells: dial %s: %w", meta.URLs.Websocket, err)
	}

	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		conn.Close()
		return ledger.ErrClosed
	}
	a.metadata = meta
	a.info = info
	a.address = account
	a.conn = conn
	a.mu.Unlock()

	subscribe := rpcMessage{
		JSONRPC: "2.0",
		ID:      json.RawMessage("1"),
		Method:  "subscribe_account",
	}
	subscribe.Params, _ = json.Marshal(subscribeParams{
		EventType: "*",
		Accounts:  []string{a.accountURL(meta, a.account)},
	})
	if err := a.writeJSON(subscribe); err != nil {
		a.mu.Lock()
		a.conn = nil
		a.mu.Unlock()
		conn.Close()
		return fmt.Errorf("fivebells: subscribe: %w", err)
	}
	a.logger.Debug("subscribed to account notifications", "account", account.String())

	a.loops.Add(2)
	go a.readLoop(conn)
	go a.keepaliveLoop(conn)
	return nil
}

// Info returns the ledger description read by Connect.
func (a *Adapter) Info(ctx context.Context) (ledger.Info, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.conn == nil {
		return ledger.Info{}, fmt.Errorf("fivebells: not connected")
	}
	return a.info, nil
}

// Account returns the local account's address. It is the zero Address
// until Connect has learned the ledger prefix.
func (a *Adapter) Account() address.Address {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.address
}

// Events returns the incoming events channel.
func (a *Adapter) Events() <-chan ledger.Event {
	return a.events
}

// SendTransfer PUTs the transfer with an authorized debit from the
// source and a credit to the destination.
func (a *Adapter) SendTransfer(ctx context.Context, transfer ledger.Transfer) error {
	meta, info, err := a.session()
	if err != nil {
		return &ledger.TransferError{ID: transfer.ID, Err: err}
	}
	if transfer.Ledger != info.Prefix {
		return &ledger.TransferError{ID: transfer.ID, Message: fmt.Sprintf("transfer is for ledger %s, not %s", transfer.Ledger, info.Prefix)}
	}
	from, err := a.addressURL(meta, info, transfer.From)
	if err != nil {
		return &ledger.TransferError{ID: transfer.ID, Err: err}
	}
	to, err := a.addressURL(meta, info, transfer.To)
	if err != nil {
		return &ledger.TransferError{ID: transfer.ID, Err: err}
	}

	transferURL := strings.Replace(meta.URLs.Transfer, ":id", transfer.ID.String(), 1)
	amount := transfer.Amount.Text()
	body := transferResource{
		ID:      transferURL,
		Ledger:  a.baseURL,
		Debits:  []transferLeg{{Account: from, Amount: amount, Authorized: transfer.Authorized}},
		Credits: []transferLeg{{Account: to, Amount: amount, Memo: jsonPayload(transfer.Memo)}},
	}

	status, message, err := a.do(ctx, http.MethodPut, transferURL, body)
	if err != nil {
		return &ledger.TransferError{ID: transfer.ID, Err: err}
	}
	if status < 200 || status >= 300 {
		return &ledger.TransferError{ID: transfer.ID, Status: status, Message: message}
	}
	a.logger.Debug("transfer submitted", "id", transfer.ID.String(), "status", status)
	return nil
}

// SendMessage POSTs a message to another account on the ledger.
func (a *Adapter) SendMessage(ctx context.Context, message ledger.Message) error {
	meta, info, err := a.session()
	if err != nil {
		return &ledger.TransferError{Err: err}
	}
	sender := message.From
	if sender.IsZero() {
		sender = a.Account()
	}
	from, err := a.addressURL(meta, info, sender)
	if err != nil {
		return &ledger.TransferError{Err: err}
	}
	to, err := a.addressURL(meta, info, message.To)
	if err != nil {
		return &ledger.TransferError{Err: err}
	}

	body := messageResource{
		Ledger: a.baseURL,
		From:   from,
		To:     to,
		Data:   jsonPayload(message.Data),
	}
	status, reason, err := a.do(ctx, http.MethodPost, meta.URLs.Message, body)
	if err != nil {
		return &ledger.TransferError{Err: err}
	}
	if status < 200 || status >= 300 {
		return &ledger.TransferError{Status: status, Message: reason}
	}
	return nil
}

// Close closes the websocket, waits for the background loops and
// closes the events channel. Close is idempotent.
func (a *Adapter) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	close(a.done)
	conn := a.conn
	a.mu.Unlock()

	var err error
	if conn != nil {
		deadline := time.Now().Add(time.Second)
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		err = conn.Close()
	}
	a.loops.Wait()
	close(a.events)
	a.httpClient.CloseIdleConnections()
	return err
}

func (a *Adapter) fetchMetadata(ctx context.Context) (metadata, ledger.Info, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL, nil)
	if err != nil {
		return metadata{}, ledger.Info{}, fmt.Errorf("fivebells: failed to create request: %w", err)
	}
	request.Header.Set("Accept", "application/json")
	request.Header.Set("User-Agent", version.UserAgent())

	response, err := a.httpClient.Do(request)
	if err != nil {
		return metadata{}, ledger.Info{}, fmt.Errorf("fivebells: fetching ledger metadata: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return metadata{}, ledger.Info{}, fmt.Errorf("fivebells: unexpected %d fetching ledger metadata: %s",
			response.StatusCode, netutil.ErrorMessage(response.Body))
	}

	var meta metadata
	if err := netutil.DecodeResponse(response.Body, &meta); err != nil {
		return metadata{}, ledger.Info{}, fmt.Errorf("fivebells: decoding ledger metadata: %w", err)
	}

	prefix, err := address.ParsePrefix(meta.Prefix)
	if err != nil {
		return metadata{}, ledger.Info{}, fmt.Errorf("fivebells: ledger prefix: %w", err)
	}
	unit, err := money.ParseCurrency(meta.CurrencyCode)
	if err != nil {
		return metadata{}, ledger.Info{}, fmt.Errorf("fivebells: ledger currency: %w", err)
	}
	info := ledger.Info{Prefix: prefix, Currency: unit}
	if meta.CurrencyScale != nil {
		if *meta.CurrencyScale < 0 {
			return metadata{}, ledger.Info{}, fmt.Errorf("fivebells: negative currency scale %d", *meta.CurrencyScale)
		}
		scale := *meta.CurrencyScale
		info.Scale = &scale
	}
	return meta, info, nil
}

// session returns the connection state needed to build requests.
func (a *Adapter) session() (metadata, ledger.Info, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return metadata{}, ledger.Info{}, ledger.ErrClosed
	}
	if a.conn == nil {
		return metadata{}, ledger.Info{}, fmt.Errorf("fivebells: not connected")
	}
	return a.metadata, a.info, nil
}

// do sends a JSON request and returns the status code and, for
// non-2xx responses, the ledger's explanation.
func (a *Adapter) do(ctx context.Context, method, target string, body any) (int, string, error) {
	encoded, err := json.Marshal(body)
	if err != nil {
		return 0, "", fmt.Errorf("fivebells: failed to encode request body: %w", err)
	}
	request, err := http.NewRequestWithContext(ctx, method, target, bytes.NewReader(encoded))
	if err != nil {
		return 0, "", fmt.Errorf("fivebells: failed to create request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Authorization", a.basicAuth())
	request.Header.Set("User-Agent", version.UserAgent())

	response, err := a.httpClient.Do(request)
	if err != nil {
		return 0, "", fmt.Errorf("fivebells: %s %s failed: %w", method, target, err)
	}
	defer response.Body.Close()

	if response.StatusCode >= 200 && response.StatusCode < 300 {
		io.Copy(io.Discard, io.LimitReader(response.Body, netutil.MaxResponseSize))
		return response.StatusCode, "", nil
	}
	return response.StatusCode, netutil.ErrorMessage(response.Body), nil
}

func (a *Adapter) basicAuth() string {
	credentials := make([]byte, 0, len(a.username)+1+a.password.Len())
	credentials = append(credentials, a.username...)
	credentials = append(credentials, ':')
	credentials = append(credentials, a.password.Bytes()...)
	defer clear(credentials)
	return "Basic " + base64.StdEncoding.EncodeToString(credentials)
}

// accountURL fills the ledger's account template with name.
func (a *Adapter) accountURL(meta metadata, name string) string {
	return strings.Replace(meta.URLs.Account, ":name", name, 1)
}

// addressURL maps an ILP address below the prefix to an account URL.
func (a *Adapter) addressURL(meta metadata, info ledger.Info, account address.Address) (string, error) {
	name, err := account.Relative(info.Prefix)
	if err != nil {
		return "", err
	}
	return a.accountURL(meta, name), nil
}

// resolveAccount maps an account reference from a notification back to
// an ILP address. References are account URLs or, from newer ledgers,
// addresses already.
func resolveAccount(meta metadata, info ledger.Info, reference string) (address.Address, error) {
	if !strings.Contains(reference, "://") {
		parsed, err := address.Parse(reference)
		if err != nil {
			return address.Address{}, err
		}
		if !parsed.Within(info.Prefix) {
			return address.Address{}, fmt.Errorf("account %s is not on ledger %s", parsed, info.Prefix)
		}
		return parsed, nil
	}
	base, _, found := strings.Cut(meta.URLs.Account, ":name")
	if !found || !strings.HasPrefix(reference, base) {
		return address.Address{}, fmt.Errorf("account URL %q does not match ledger template %q", reference, meta.URLs.Account)
	}
	return info.Prefix.Join(strings.TrimPrefix(reference, base))
}

func (a *Adapter) writeJSON(v any) error {
	a.writeMu.Lock()
	defer a.writeMu.Unlock()
	a.mu.Lock()
	conn := a.conn
	a.mu.Unlock()
	if conn == nil {
		return fmt.Errorf("not connected")
	}
	conn.SetWriteDeadline(time.Now().Add(a.timeout))
	return conn.WriteJSON(v)
}

// emit delivers event unless the adapter is closing.
func (a *Adapter) emit(event ledger.Event) {
	select {
	case a.events <- event:
	case <-a.done:
	}
}

func (a *Adapter) readLoop(conn *websocket.Conn) {
	defer a.loops.Done()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-a.done:
				return
			default:
			}
			switch {
			case netutil.IsExpectedCloseError(err):
				a.logger.Info("ledger closed the notification connection", "error", err)
			case netutil.IsConnectionReset(err):
				a.logger.Warn("notification connection reset by ledger", "error", err)
			default:
				a.logger.Warn("notification connection failed", "error", err)
			}
			a.emit(ledger.ErrorEvent{Err: fmt.Errorf("fivebells: notification connection: %w", err)})
			return
		}

		event, err := a.translate(data)
		if err != nil {
			a.emit(ledger.ErrorEvent{Err: err})
			continue
		}
		if event != nil {
			a.emit(event)
		}
	}
}

// translate converts one notification frame into an event. Frames that
// carry nothing for the client (subscription acknowledgements, unknown
// notification kinds) yield a nil event.
func (a *Adapter) translate(data []byte) (ledger.Event, error) {
	var frame rpcMessage
	if err := json.Unmarshal(data, &frame); err != nil {
		return nil, fmt.Errorf("fivebells: malformed notification frame: %w", err)
	}
	if frame.Error != nil {
		return nil, fmt.Errorf("fivebells: ledger RPC error %d: %s", frame.Error.Code, frame.Error.Message)
	}

	a.mu.Lock()
	meta, info, account := a.metadata, a.info, a.address
	a.mu.Unlock()

	switch frame.Method {
	case "":
		return nil, nil
	case "connect":
		return ledger.ConnectEvent{Account: account}, nil
	case "notify":
	default:
		a.logger.Debug("ignoring notification method", "method", frame.Method)
		return nil, nil
	}

	var params notification
	if err := json.Unmarshal(frame.Params, &params); err != nil {
		return nil, fmt.Errorf("fivebells: malformed notify params: %w", err)
	}

	switch params.Event {
	case eventTransferCreate, eventTransferUpdate:
		var resource transferResource
		if err := json.Unmarshal(params.Resource, &resource); err != nil {
			return nil, fmt.Errorf("fivebells: malformed transfer notification: %w", err)
		}
		converted, err := convertTransfer(meta, info, resource)
		if err != nil {
			return nil, err
		}
		return ledger.TransferEvent{Transfer: converted}, nil
	case eventMessageSend:
		var resource messageResource
		if err := json.Unmarshal(params.Resource, &resource); err != nil {
			return nil, fmt.Errorf("fivebells: malformed message notification: %w", err)
		}
		from, err := resolveAccount(meta, info, resource.From)
		if err != nil {
			return nil, fmt.Errorf("fivebells: message sender: %w", err)
		}
		to, err := resolveAccount(meta, info, resource.To)
		if err != nil {
			return nil, fmt.Errorf("fivebells: message recipient: %w", err)
		}
		return ledger.MessageEvent{Message: ledger.Message{From: from, To: to, Data: payloadBytes(resource.Data)}}, nil
	default:
		a.logger.Debug("ignoring notification event", "event", params.Event)
		return nil, nil
	}
}

func convertTransfer(meta metadata, info ledger.Info, resource transferResource) (ledger.Transfer, error) {
	if len(resource.Debits) == 0 || len(resource.Credits) == 0 {
		return ledger.Transfer{}, fmt.Errorf("fivebells: transfer %s has no debits or credits", resource.ID)
	}

	idText := resource.ID
	if slash := strings.LastIndexByte(idText, '/'); slash >= 0 {
		idText = idText[slash+1:]
	}
	id, err := uuid.Parse(idText)
	if err != nil {
		return ledger.Transfer{}, fmt.Errorf("fivebells: transfer id %q: %w", resource.ID, err)
	}

	debit, credit := resource.Debits[0], resource.Credits[0]
	from, err := resolveAccount(meta, info, debit.Account)
	if err != nil {
		return ledger.Transfer{}, fmt.Errorf("fivebells: transfer %s source: %w", id, err)
	}
	to, err := resolveAccount(meta, info, credit.Account)
	if err != nil {
		return ledger.Transfer{}, fmt.Errorf("fivebells: transfer %s destination: %w", id, err)
	}
	amount, err := money.Parse(credit.Amount, info.Currency, info.CurrencyScale())
	if err != nil {
		return ledger.Transfer{}, fmt.Errorf("fivebells: transfer %s amount: %w", id, err)
	}

	return ledger.Transfer{
		ID:         id,
		Ledger:     info.Prefix,
		From:       from,
		To:         to,
		Amount:     amount,
		Authorized: debit.Authorized,
		Memo:       payloadBytes(credit.Memo),
		State:      resource.State,
	}, nil
}

func (a *Adapter) keepaliveLoop(conn *websocket.Conn) {
	defer a.loops.Done()

	ticker := a.clock.NewTicker(a.keepalive)
	defer ticker.Stop()

	for {
		select {
		case <-a.done:
			return
		case <-ticker.C:
			deadline := time.Now().Add(a.timeout)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				if errors.Is(err, websocket.ErrCloseSent) {
					return
				}
				a.logger.Warn("keepalive ping failed", "error", err)
			}
		}
	}
}
