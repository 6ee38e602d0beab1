// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package connection

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bureau-foundation/concord/lib/codec"
	"github.com/bureau-foundation/concord/lib/core"
	"github.com/bureau-foundation/concord/lib/crypto"
	"github.com/bureau-foundation/concord/lib/graph"
	"github.com/bureau-foundation/concord/lib/invitation"
	"github.com/bureau-foundation/concord/lib/secret"
	"github.com/bureau-foundation/concord/lib/storage"
	"github.com/bureau-foundation/concord/lib/team"
	"github.com/bureau-foundation/concord/lib/teamerr"
	"github.com/bureau-foundation/concord/lib/transport"
)

// State is a connection's coarse position in spec §4.F's state
// machine, reported for logging and introspection. The identity
// claim/challenge/prove and invitation-admission sub-states spec §4.F
// and §4.G name are tracked internally (see runState's fields)
// rather than each getting their own top-level State value, since
// both directions of authentication progress independently and a
// single linear enum cannot represent "I've proven myself but haven't
// yet verified the peer" without combinatorial blowup.
type State int

const (
	StateIdle State = iota
	StateAuthenticating
	StateSynchronizing
	StateConnected
	StateDisconnected
)

// String returns a human-readable name for s.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAuthenticating:
		return "authenticating"
	case StateSynchronizing:
		return "synchronizing"
	case StateConnected:
		return "connected"
	case StateDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// EventKind discriminates what [Connection.Events] reports.
type EventKind int

const (
	EventConnected EventKind = iota
	EventDisconnected
	EventMessage
	EventError
)

// Event is one notification delivered on [Connection.Events].
type Event struct {
	Kind    EventKind
	Err     error
	Payload []byte // EventMessage only: a decrypted ENCRYPTED_MESSAGE payload
}

// defaultTimeout is spec §4.F's "timeouts per sub-state (default
// 30s)" — the whole pre-Connected handshake shares one deadline here
// rather than a separate one per named sub-state, reset on every
// inbound message, since any forward progress is evidence the peer is
// still live.
const defaultTimeout = 30 * time.Second

// reorderWindow bounds how far ahead of the expected peer sequence
// index an inbound message may be before it is treated as
// irrecoverably out of order (spec §4.F: "receiver rejects
// out-of-order messages outside a small window, requests resync").
// Indices behind the expected value are silently treated as stale
// duplicates rather than rejected outright — a retransmitted message
// is not a protocol violation.
const reorderWindow = 16

// outboundBuffer sizes the channel between the run loop and the
// writer goroutine. [transport.Pipe]'s net.Pipe-backed conn is fully
// synchronous — a Write blocks until the peer's Read drains it — so
// the run loop must never call conn.Write directly; it would deadlock
// against a peer doing the same thing at the same moment, so a
// background writer goroutine does every Write.
const outboundBuffer = 16

// Params carries what [New] needs to build a [Connection].
type Params struct {
	// Team is the local team instance this connection authenticates
	// against and syncs with. Nil only for an [InviteeContext] that
	// has not yet been admitted — LoadedTeam reports the instance
	// [Connection] builds once ACCEPT_INVITATION arrives.
	Team *core.Team

	Conn    transport.Conn
	Context Context
	Logger  *slog.Logger
	Timeout time.Duration

	// Store persists the team instance an invitee's connection builds
	// after admission; ignored when Team is already set.
	Store storage.Store
}

// Connection drives one peer link through spec §4.F's handshake into
// steady-state encrypted messaging. See the package doc for its
// single-goroutine-owns-state design.
type Connection struct {
	conn    transport.Conn
	ctx     Context
	team    *core.Team
	logger  *slog.Logger
	timeout time.Duration
	store   storage.Store

	outbound chan Numbered
	inbound  chan Numbered
	commands chan command
	events   chan Event

	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once

	// loadedTeam is set once an invitee's connection admits it via
	// ACCEPT_INVITATION; read-only to callers after EventConnected.
	loadedTeam *core.Team
}

type command struct {
	deliver *Numbered
	send    []byte // ENCRYPTED_MESSAGE payload to encrypt and send
}

// New builds a connection ready for [Connection.Start]. params.Conn
// and params.Context are required; params.Team may be nil only when
// params.Context is an [InviteeContext].
func New(params Params) (*Connection, error) {
	if params.Conn == nil {
		return nil, fmt.Errorf("connection: Conn is required")
	}
	if params.Context == nil {
		return nil, fmt.Errorf("connection: Context is required")
	}
	if params.Team == nil {
		if _, ok := params.Context.(InviteeContext); !ok {
			return nil, fmt.Errorf("connection: Team is required unless Context is an InviteeContext")
		}
	}
	logger := params.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := params.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Connection{
		conn:     params.Conn,
		ctx:      params.Context,
		team:     params.Team,
		logger:   logger,
		timeout:  timeout,
		store:    params.Store,
		outbound: make(chan Numbered, outboundBuffer),
		inbound:  make(chan Numbered, outboundBuffer),
		commands: make(chan command, outboundBuffer),
		events:   make(chan Event, outboundBuffer),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Events returns the channel a host subscribes to for this
// connection's lifecycle notifications. Never closed; a host that no
// longer cares simply stops reading it.
func (c *Connection) Events() <-chan Event {
	return c.events
}

// LoadedTeam returns the [core.Team] an invitee's connection built
// after admission, or nil before that point or for a connection that
// started with an already-admitted [MemberContext]/[ServerContext].
func (c *Connection) LoadedTeam() *core.Team {
	return c.loadedTeam
}

// Start launches the connection's goroutines: a reader decoding
// [Numbered] messages off the wire, a writer draining outbound sends,
// and the run loop that owns all handshake state and drives the
// protocol forward. The handshake begins immediately — spec §4.F step
// 1, both peers send REQUEST_IDENTITY unconditionally on start.
func (c *Connection) Start() {
	go c.readLoop()
	go c.writeLoop()
	go c.run()
}

// Stop cooperatively tears the connection down: closing the transport
// unblocks the reader, and the run loop exits once it observes either
// the closed transport or stopCh. Safe to call more than once and
// from any goroutine.
func (c *Connection) Stop() error {
	c.stopOnce.Do(func() {
		close(c.stopCh)
		c.conn.Close()
	})
	<-c.doneCh
	return nil
}

// Deliver injects msg as though it had arrived over the wire,
// bypassing the transport entirely — spec §6's host-facing
// `deliver(msg)`, useful for a relay that has already decoded a
// message from elsewhere, or a test driving the state machine without
// a real transport pair.
func (c *Connection) Deliver(msg Message) {
	select {
	case c.commands <- command{deliver: &Numbered{Message: msg}}:
	case <-c.doneCh:
	}
}

// Send AEAD-encrypts payload under the negotiated session key and
// transmits it as an ENCRYPTED_MESSAGE. Only valid once the connection
// has reached [StateConnected]; a Send before then is reported as an
// [EventError] on [Connection.Events], not returned. Send itself
// returns an error only when the connection has already shut down.
func (c *Connection) Send(payload []byte) error {
	select {
	case c.commands <- command{send: payload}:
		return nil
	case <-c.doneCh:
		return fmt.Errorf("connection: closed")
	}
}

func (c *Connection) readLoop() {
	decoder := codec.NewDecoder(c.conn)
	for {
		var msg Numbered
		if err := decoder.Decode(&msg); err != nil {
			select {
			case c.inbound <- Numbered{Message: Message{Kind: LocalError, Message: err.Error()}}:
			case <-c.doneCh:
			}
			return
		}
		select {
		case c.inbound <- msg:
		case <-c.doneCh:
			return
		}
	}
}

func (c *Connection) writeLoop() {
	encoder := codec.NewEncoder(c.conn)
	for {
		select {
		case msg := <-c.outbound:
			if err := encoder.Encode(msg); err != nil {
				return
			}
		case <-c.doneCh:
			return
		}
	}
}

// run owns every mutable piece of handshake state and is the only
// goroutine that ever reads or writes it — see the package doc.
func (c *Connection) run() {
	defer close(c.doneCh)

	s := &runState{conn: c}
	s.localIndex = 0
	s.expectPeerIndex = 0
	s.state = StateIdle

	timer := time.NewTimer(c.timeout)
	defer timer.Stop()

	var teamEvents <-chan core.Event
	if c.team != nil {
		teamEvents = c.team.Events()
	}

	s.send(Message{Kind: RequestIdentity})
	s.state = StateAuthenticating

	for {
		select {
		case <-c.stopCh:
			return

		case <-timer.C:
			if s.state != StateConnected {
				s.fail(teamerr.Of(teamerr.Timeout))
				return
			}

		case numbered, ok := <-c.inbound:
			if !ok {
				return
			}
			if numbered.Message.Kind == LocalError {
				s.fail(fmt.Errorf("connection: %s", numbered.Message.Message))
				return
			}
			if !s.acceptSequence(numbered.Index) {
				s.send(Message{Kind: ErrorMessage, Message: "message index out of order, resync required"})
				s.fail(teamerr.Of(teamerr.ProtocolViolation))
				return
			}
			if !timer.Stop() {
				<-timer.C
			}
			timer.Reset(c.timeout)
			if terminal := s.handle(numbered.Message); terminal {
				return
			}

		case cmd := <-c.commands:
			if cmd.deliver != nil {
				if terminal := s.handle(cmd.deliver.Message); terminal {
					return
				}
			}
			if cmd.send != nil {
				if err := s.sendEncrypted(cmd.send); err != nil {
					s.emit(Event{Kind: EventError, Err: err})
				}
			}

		case event, ok := <-teamEvents:
			if ok && event.Kind == core.EventUpdated {
				s.send(Message{Kind: LocalUpdate, Head: c.team.Graph().Head})
				if s.state == StateConnected || s.state == StateSynchronizing {
					s.syncSent = false
					s.sendSync()
				}
			}
		}
	}
}

// runState is everything the run loop owns. Splitting it out of
// [Connection] itself keeps the single-goroutine-ownership invariant
// visible at the type level: nothing outside run() ever holds a
// *runState.
type runState struct {
	conn *Connection

	state State

	localIndex      uint32
	expectPeerIndex uint32

	selfProven bool // the peer accepted our identity
	peerProven bool // we verified the peer's identity

	peerUserName   string
	peerDeviceID   string
	peerSigningKey crypto.SigningPublicKey
	peerEncryptKey crypto.EncryptPublicKey

	challengeScope   string
	pendingChallenge *Challenge

	peerKnownHashes map[graph.Hash]bool
	syncSent        bool
	syncSettled     bool

	localSeed  []byte
	peerSeed   []byte
	sessionKey *secret.Buffer
}

func (s *runState) emit(event Event) {
	select {
	case s.conn.events <- event:
	default:
		select {
		case <-s.conn.events:
		default:
		}
		select {
		case s.conn.events <- event:
		default:
		}
	}
}

func (s *runState) send(msg Message) {
	numbered := Numbered{Index: s.localIndex, Message: msg}
	s.localIndex++
	select {
	case s.conn.outbound <- numbered:
	case <-s.conn.doneCh:
	}
}

func (s *runState) fail(err error) {
	s.state = StateDisconnected
	s.emit(Event{Kind: EventError, Err: err})
	s.emit(Event{Kind: EventDisconnected, Err: err})
}

func (s *runState) acceptSequence(index uint32) bool {
	if index < s.expectPeerIndex {
		return true // stale retransmit, ignore its ordering but still process below
	}
	if index > s.expectPeerIndex+reorderWindow {
		return false
	}
	s.expectPeerIndex = index + 1
	return true
}

// handle dispatches one inbound message. Returns true if the
// connection has reached a terminal state and run() should exit.
func (s *runState) handle(msg Message) bool {
	switch msg.Kind {
	case RequestIdentity:
		claim, err := s.conn.ctx.claim()
		if err != nil {
			s.fail(err)
			return true
		}
		s.send(claim)

	case ClaimIdentity:
		return s.handleClaim(msg)

	case ChallengeIdentity:
		return s.handleChallenge(msg)

	case ProveIdentity:
		return s.handleProve(msg)

	case AcceptIdentity:
		s.selfProven = true
		s.advance()

	case RejectIdentity:
		s.fail(teamerr.New(teamerr.InvalidSignature, "peer rejected our identity: %s", msg.Message))
		return true

	case AcceptInvitation:
		return s.handleAcceptInvitation(msg)

	case Sync:
		return s.handleSync(msg)

	case LocalUpdate:
		s.syncSent = false
		s.sendSync()

	case Seed:
		return s.handleSeed(msg)

	case EncryptedMessage:
		return s.handleEncrypted(msg)

	case Disconnect:
		s.state = StateDisconnected
		s.emit(Event{Kind: EventDisconnected, Err: errors.New(msg.Message)})
		return true

	case ErrorMessage:
		s.fail(fmt.Errorf("connection: peer reported: %s", msg.Message))
		return true
	}
	return false
}

// handleClaim processes a peer's CLAIM_IDENTITY: either an existing
// device asserting userName/deviceID (spec §4.F step 4: challenge it)
// or a newcomer presenting a proof of invitation (step 3: validate and
// admit).
func (s *runState) handleClaim(msg Message) bool {
	if msg.Proof != nil {
		return s.handleInvitationClaim(msg)
	}

	if s.conn.team == nil {
		s.fail(fmt.Errorf("connection: no team to authenticate a device claim against"))
		return true
	}
	member, ok := s.conn.team.Member(msg.UserName)
	if !ok {
		s.send(Message{Kind: RejectIdentity, Message: "unknown member"})
		s.fail(teamerr.Of(teamerr.NotFound))
		return true
	}
	devicePublic, ok := member.Devices[msg.DeviceID]
	if !ok {
		s.send(Message{Kind: RejectIdentity, Message: "unknown device"})
		s.fail(teamerr.Of(teamerr.NotFound))
		return true
	}

	s.peerUserName = msg.UserName
	s.peerDeviceID = msg.DeviceID
	s.peerSigningKey = devicePublic.Keys.Signing
	s.peerEncryptKey = devicePublic.Keys.Encrypt

	nonce, err := crypto.Random(24)
	if err != nil {
		s.fail(fmt.Errorf("connection: generating challenge nonce: %w", err))
		return true
	}
	s.challengeScope = s.conn.ctx.device().ID
	s.pendingChallenge = &Challenge{Nonce: nonce, Scope: s.challengeScope, Timestamp: time.Now().Unix()}
	s.send(Message{Kind: ChallengeIdentity, Challenge: s.pendingChallenge})
	return false
}

// handleInvitationClaim validates and admits a newcomer's claimed
// proof of invitation, per spec §4.F step 3. The soundness check that
// the proof's claimed identity matches what the original invitation
// named (spec §7) is enforced inside [core.Team.Admit]/
// [core.Team.AdmitDevice] themselves, against the invitation's own
// sealed payload — not against whatever this handler happens to be
// given — so a peer cannot ride a genuinely-accepted proof while
// asserting a different identity than the one it was issued for.
func (s *runState) handleInvitationClaim(msg Message) bool {
	if s.conn.team == nil {
		s.fail(fmt.Errorf("connection: no team to admit an invitation against"))
		return true
	}
	if msg.Principal == nil {
		s.fail(fmt.Errorf("connection: invitation claim missing principal"))
		return true
	}

	var err error
	switch msg.Proof.Type {
	case invitation.Member:
		var roles []string
		roles, err = s.conn.team.RolesFor(msg.Proof.ID)
		if err == nil {
			keys := team.Keys{Signing: msg.Principal.Signing, Encrypt: msg.Principal.Encrypt}
			member := &team.Member{
				UserName: msg.Principal.UserName,
				Keys:     keys,
				Devices:  map[string]team.DevicePublic{msg.Principal.DeviceID: {DeviceID: msg.Principal.DeviceID, Keys: keys}},
			}
			err = s.conn.team.Admit(core.AdmitParams{Proof: msg.Proof, Member: member, Roles: roles})
		}
	case invitation.Device:
		device := &team.DevicePublic{
			DeviceID: msg.Principal.DeviceID,
			Keys:     team.Keys{Signing: msg.Principal.Signing, Encrypt: msg.Principal.Encrypt},
		}
		err = s.conn.team.AdmitDevice(core.AdmitDeviceParams{Proof: msg.Proof, UserName: msg.Principal.UserName, Device: device})
	default:
		err = fmt.Errorf("connection: unknown invitation type %v", msg.Proof.Type)
	}

	if err != nil {
		s.send(Message{Kind: RejectIdentity, Message: err.Error()})
		s.fail(err)
		return true
	}

	graphBytes, err := s.conn.team.Graph().Serialize()
	if err != nil {
		s.fail(fmt.Errorf("connection: serializing graph for admitted peer: %w", err))
		return true
	}
	s.send(Message{Kind: AcceptInvitation, SerializedGraph: graphBytes})

	// Admission itself — a valid invitation proof checked against
	// posted team state — is the proof of identity; no separate
	// challenge is needed for a principal the team just admitted.
	s.peerUserName = msg.Principal.UserName
	s.peerDeviceID = msg.Principal.DeviceID
	s.peerSigningKey = msg.Principal.Signing
	s.peerEncryptKey = msg.Principal.Encrypt
	s.peerProven = true
	s.advance()
	return false
}

// handleChallenge responds to the peer's CHALLENGE_IDENTITY by
// signing it with the local device's key (spec §4.F step 5).
func (s *runState) handleChallenge(msg Message) bool {
	if msg.Challenge == nil {
		s.fail(fmt.Errorf("connection: challenge missing"))
		return true
	}
	data, err := codec.Marshal(*msg.Challenge)
	if err != nil {
		s.fail(fmt.Errorf("connection: encoding challenge: %w", err))
		return true
	}
	signature, err := crypto.Sign(s.conn.ctx.device().Keys.SigningSecret, data)
	if err != nil {
		s.fail(fmt.Errorf("connection: signing challenge: %w", err))
		return true
	}
	s.send(Message{Kind: ProveIdentity, Challenge: msg.Challenge, Signature: signature})
	return false
}

// handleProve verifies the peer's PROVE_IDENTITY against the
// challenge this side issued, per spec §4.F step 5.
func (s *runState) handleProve(msg Message) bool {
	if s.pendingChallenge == nil || msg.Challenge == nil {
		s.send(Message{Kind: RejectIdentity, Message: "no challenge outstanding"})
		s.fail(teamerr.Of(teamerr.ProtocolViolation))
		return true
	}
	if msg.Challenge.Scope != s.pendingChallenge.Scope ||
		msg.Challenge.Timestamp != s.pendingChallenge.Timestamp ||
		!bytes.Equal(msg.Challenge.Nonce, s.pendingChallenge.Nonce) {
		s.send(Message{Kind: RejectIdentity, Message: "challenge mismatch"})
		s.fail(teamerr.Of(teamerr.ProtocolViolation))
		return true
	}

	data, err := codec.Marshal(*s.pendingChallenge)
	if err != nil {
		s.fail(fmt.Errorf("connection: encoding challenge: %w", err))
		return true
	}
	if !crypto.Verify(s.peerSigningKey, data, msg.Signature) {
		s.send(Message{Kind: RejectIdentity, Message: "signature verification failed"})
		s.fail(teamerr.Of(teamerr.InvalidSignature))
		return true
	}

	s.peerProven = true
	s.send(Message{Kind: AcceptIdentity})
	s.advance()
	return false
}

// handleAcceptInvitation is the invitee's side of spec §4.F step 3:
// load the admitter's graph and join the team, then re-enter
// authenticating by claiming the now-enrolled deviceId (spec: "the
// invited peer loads the graph then re-enters authenticating with
// deviceId").
func (s *runState) handleAcceptInvitation(msg Message) bool {
	invitee, ok := s.conn.ctx.(InviteeContext)
	if !ok {
		s.fail(fmt.Errorf("connection: received ACCEPT_INVITATION without an invitee context"))
		return true
	}

	g, err := graph.Deserialize(msg.SerializedGraph)
	if err != nil {
		s.fail(fmt.Errorf("connection: deserializing admitted graph: %w", err))
		return true
	}
	joined, err := core.LoadFromGraph(core.LoadFromGraphParams{
		Graph:  g,
		Device: invitee.Device,
		Store:  s.conn.store,
		Logger: s.conn.logger,
	})
	if err != nil {
		s.fail(fmt.Errorf("connection: joining team from admitted graph: %w", err))
		return true
	}
	s.conn.team = joined
	s.conn.loadedTeam = joined

	s.selfProven = true // the admitter already verified our invitation proof
	s.send(Message{Kind: ClaimIdentity, UserName: invitee.UserName, DeviceID: invitee.Device.ID})
	s.advance()
	return false
}

// advance checks whether enough progress has been made to move into
// the next phase — sync once both directions of identity are proven,
// seed negotiation once sync has settled, and StateConnected once a
// session key can be derived.
func (s *runState) advance() {
	if !s.selfProven || !s.peerProven {
		return
	}
	s.state = StateSynchronizing
	if !s.syncSent {
		s.sendSync()
	}
	s.maybeSeed()
}

// hashSet returns the set of every link hash the local graph
// currently holds.
func (s *runState) hashSet() map[graph.Hash]bool {
	links := s.conn.team.Graph().Links
	set := make(map[graph.Hash]bool, len(links))
	for hash := range links {
		set[hash] = true
	}
	return set
}

// sendSync sends a SYNC message advertising every link hash the local
// graph holds, plus the full links for any hash the peer has not yet
// advertised knowing — spec §9's resolved Open Question (see
// SPEC_FULL.md). syncSent is set regardless of whether there was
// anything new to attach, since the advertisement itself (KnownHashes)
// is what lets the peer detect convergence.
func (s *runState) sendSync() {
	if s.conn.team == nil {
		return
	}
	g := s.conn.team.Graph()
	known := s.hashSet()

	var missing []*graph.Link
	for hash := range known {
		if s.peerKnownHashes == nil || !s.peerKnownHashes[hash] {
			missing = append(missing, g.Links[hash])
		}
	}

	hashes := make([]graph.Hash, 0, len(known))
	for hash := range known {
		hashes = append(hashes, hash)
	}

	s.syncSent = true
	s.send(Message{Kind: Sync, Head: g.Head, KnownHashes: hashes, Links: missing})
}

// handleSync merges any links the peer believes we're missing and
// replies with our own delta if the peer's advertised hash set still
// lacks something we have, per spec §9's resolved Open Question.
// Convergence — both sides' SYNC KnownHashes already matching the
// receiver's own head set — gates entry into seed negotiation.
func (s *runState) handleSync(msg Message) bool {
	if s.conn.team == nil {
		s.fail(fmt.Errorf("connection: received SYNC before a team was established"))
		return true
	}

	if len(msg.Links) > 0 || msg.Head != s.conn.team.Graph().Head {
		linksByHash := make(map[graph.Hash]*graph.Link, len(msg.Links))
		for _, link := range msg.Links {
			hash, err := link.Hash()
			if err != nil {
				s.fail(fmt.Errorf("connection: hashing received link: %w", err))
				return true
			}
			linksByHash[hash] = link
		}
		other := &graph.Graph{Root: s.conn.team.Graph().Root, Head: msg.Head, Links: linksByHash}
		if err := s.conn.team.Merge(other); err != nil {
			s.fail(fmt.Errorf("connection: merging peer's graph: %w", err))
			return true
		}
	}

	peerKnown := make(map[graph.Hash]bool, len(msg.KnownHashes))
	for _, hash := range msg.KnownHashes {
		peerKnown[hash] = true
	}
	s.peerKnownHashes = peerKnown

	owesPeer := false
	for hash := range s.hashSet() {
		if !peerKnown[hash] {
			owesPeer = true
			break
		}
	}
	if owesPeer {
		s.sendSync()
	} else {
		s.syncSettled = true
	}

	s.maybeSeed()
	return false
}

// maybeSeed mints and sends this side's seed contribution once
// identity is proven both ways and the sync round has settled, per
// spec §4.F step 7.
func (s *runState) maybeSeed() {
	if !s.selfProven || !s.peerProven || !s.syncSettled {
		return
	}
	if s.localSeed != nil {
		s.maybeConnected()
		return
	}

	seed, err := crypto.Random(32)
	if err != nil {
		s.fail(fmt.Errorf("connection: generating seed contribution: %w", err))
		return
	}
	s.localSeed = seed

	device := s.conn.ctx.device()
	sealed, err := crypto.Seal(seed, s.peerEncryptKey, device.Keys.EncryptSecret)
	if err != nil {
		s.fail(fmt.Errorf("connection: sealing seed contribution: %w", err))
		return
	}
	s.send(Message{Kind: Seed, EncryptedSeed: sealed})
	s.maybeConnected()
}

// handleSeed unseals the peer's seed contribution and, once both
// contributions are in hand, derives the shared session key.
func (s *runState) handleSeed(msg Message) bool {
	device := s.conn.ctx.device()
	plaintext, err := crypto.Unseal(msg.EncryptedSeed, s.peerEncryptKey, device.Keys.EncryptSecret)
	if err != nil {
		s.fail(fmt.Errorf("connection: unsealing peer's seed: %w", err))
		return true
	}
	defer plaintext.Close()
	s.peerSeed = append([]byte(nil), plaintext.Bytes()...)

	s.maybeConnected()
	return false
}

// maybeConnected derives the session key from both seed contributions
// — spec §4.F step 7's `hash("session", sort(seedA, seedB))` — once
// both are present, and transitions to StateConnected.
func (s *runState) maybeConnected() {
	if s.localSeed == nil || s.peerSeed == nil || s.sessionKey != nil {
		return
	}

	a, b := s.localSeed, s.peerSeed
	if bytes.Compare(b, a) < 0 {
		a, b = b, a
	}
	combined := make([]byte, 0, len(a)+len(b))
	combined = append(combined, a...)
	combined = append(combined, b...)
	hash := codec.HashUnder(codec.DomainSession, combined)

	key, err := secret.NewFromBytes(hash[:])
	if err != nil {
		s.fail(fmt.Errorf("connection: protecting session key: %w", err))
		return
	}
	s.sessionKey = key
	s.state = StateConnected
	s.emit(Event{Kind: EventConnected})
}

// sendEncrypted AEAD-encrypts payload under the session key and sends
// it as an ENCRYPTED_MESSAGE, spec §4.F step 8's steady state.
func (s *runState) sendEncrypted(payload []byte) error {
	if s.sessionKey == nil {
		return fmt.Errorf("connection: not yet connected")
	}
	ciphertext, err := crypto.AEADEncrypt(s.sessionKey, payload, nil)
	if err != nil {
		return fmt.Errorf("connection: encrypting payload: %w", err)
	}
	s.send(Message{Kind: EncryptedMessage, Ciphertext: ciphertext})
	return nil
}

// handleEncrypted decrypts an incoming ENCRYPTED_MESSAGE and reports
// it via [EventMessage].
func (s *runState) handleEncrypted(msg Message) bool {
	if s.sessionKey == nil {
		s.fail(fmt.Errorf("connection: received ENCRYPTED_MESSAGE before a session key was negotiated"))
		return true
	}
	plaintext, err := crypto.AEADDecrypt(s.sessionKey, msg.Ciphertext, nil)
	if err != nil {
		s.fail(fmt.Errorf("connection: decrypting message: %w", err))
		return true
	}
	defer plaintext.Close()
	s.emit(Event{Kind: EventMessage, Payload: append([]byte(nil), plaintext.Bytes()...)})
	return false
}
