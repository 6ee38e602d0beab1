package core

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bureau-foundation/concord/lib/graph"
	"github.com/bureau-foundation/concord/lib/identity"
	"github.com/bureau-foundation/concord/lib/keyset"
	"github.com/bureau-foundation/concord/lib/storage"
	"github.com/bureau-foundation/concord/lib/team"
)

// Team is one team instance: the host-facing object spec §6 lists
// the `create/load/save/members/.../encrypt/decrypt/sign/verify` API
// on. See the package doc for the dispatch model.
type Team struct {
	mu sync.Mutex

	logger *slog.Logger
	clock  func() int64

	graph   *graph.Graph
	state   *team.TeamState
	keyring *keyset.Keyring

	device   *identity.Device
	userName string

	store storage.Store
	events chan Event
}

// CreateParams carries the fields [Create] needs to found a new team.
type CreateParams struct {
	TeamName string

	// Device is the founding member's own device — its signing key
	// authors the ROOT link, its encryption key receives the team
	// and admin role lockboxes.
	Device *identity.Device

	// Seed is the human-chosen secret the team's ScopeTeam keyset is
	// deterministically derived from (spec §8 scenario 1: "Alice
	// creates team \"t\" with seed \"a-seed\""). Empty means generate
	// the team key fresh from the system CSPRNG instead.
	Seed string

	Store  storage.Store
	Logger *slog.Logger
}

// Create founds a new team: mints a ScopeTeam keyset from params.Seed
// and a fresh ScopeRole(admin) keyset, seals both to the founding
// device, and posts the resulting ROOT action as the graph's root
// link (spec §4.D's `validateRoot`/`reduceRoot`).
func Create(params CreateParams) (*Team, error) {
	if params.Device == nil {
		return nil, fmt.Errorf("core: Create requires a founding device")
	}
	logger := params.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var teamSeed []byte
	if params.Seed != "" {
		teamSeed = []byte(params.Seed)
	}
	teamKey, err := keyset.Create(keyset.ScopeTeam, params.TeamName, 0, teamSeed)
	if err != nil {
		return nil, fmt.Errorf("core: deriving team key: %w", err)
	}
	adminKey, err := keyset.Create(keyset.ScopeRole, team.AdminRole, 0, nil)
	if err != nil {
		teamKey.Close()
		return nil, fmt.Errorf("core: generating admin role key: %w", err)
	}

	founderEncrypt := params.Device.Keys.EncryptPublic
	teamLockbox, err := keyset.CreateLockbox(teamKey, keyset.Reference{ID: teamKey.ID, EncryptPublic: founderEncrypt})
	if err != nil {
		teamKey.Close()
		adminKey.Close()
		return nil, fmt.Errorf("core: sealing team key to founder: %w", err)
	}
	adminLockbox, err := keyset.CreateLockbox(adminKey, keyset.Reference{ID: adminKey.ID, EncryptPublic: founderEncrypt})
	if err != nil {
		teamKey.Close()
		adminKey.Close()
		return nil, fmt.Errorf("core: sealing admin key to founder: %w", err)
	}

	founderDevicePublic := team.DevicePublic{
		DeviceID: params.Device.ID,
		Keys:     team.Keys{Signing: params.Device.Keys.SigningPublic, Encrypt: params.Device.Keys.EncryptPublic},
	}
	action := &team.Action{
		Kind:     team.ActionRoot,
		TeamName: params.TeamName,
		RootMember: &team.Member{
			UserName: params.Device.UserName,
			Keys:     founderDevicePublic.Keys,
			Roles:    map[string]bool{team.AdminRole: true},
			Devices:  map[string]team.DevicePublic{params.Device.ID: founderDevicePublic},
		},
		Lockboxes: []*keyset.Lockbox{teamLockbox, adminLockbox},
	}
	payload, err := action.Encode()
	if err != nil {
		teamKey.Close()
		adminKey.Close()
		return nil, fmt.Errorf("core: encoding ROOT action: %w", err)
	}

	g, err := graph.Create(graph.CreateParams{
		Payload:       payload,
		UserName:      params.Device.UserName,
		DeviceID:      params.Device.ID,
		ContextPublic: params.Device.Keys.SigningPublic[:],
		Timestamp:     nowUnix(),
	}, params.Device.Keys.SigningSecret)
	if err != nil {
		teamKey.Close()
		adminKey.Close()
		return nil, fmt.Errorf("core: minting root link: %w", err)
	}

	sequence, err := g.GetSequence(graph.TrivialResolver)
	if err != nil {
		teamKey.Close()
		adminKey.Close()
		return nil, fmt.Errorf("core: sequencing founding graph: %w", err)
	}
	state, err := team.Reduce(sequence)
	if err != nil {
		teamKey.Close()
		adminKey.Close()
		return nil, fmt.Errorf("core: reducing founding graph: %w", err)
	}

	keyring, err := keyset.Compute(deviceRootKeyset(params.Device), state.Lockboxes)
	if err != nil {
		teamKey.Close()
		adminKey.Close()
		return nil, fmt.Errorf("core: computing founder keyring: %w", err)
	}

	t := &Team{
		logger:   logger,
		clock:    nowUnix,
		graph:    g,
		state:    state,
		keyring:  keyring,
		device:   params.Device,
		userName: params.Device.UserName,
		store:    params.Store,
		events:   make(chan Event, eventBufferSize),
	}
	logger.Info("team founded", "team", params.TeamName, "founder", params.Device.UserName)
	return t, nil
}

// LoadParams carries the fields [Load] needs to restore a team from
// a previously persisted blob.
type LoadParams struct {
	Blob   []byte
	Device *identity.Device
	Store  storage.Store
	Logger *slog.Logger
}

// blobSeparator delimits the serialized graph from the serialized
// keyring within a [Team.Save] blob, per spec §6: `blob =
// serialize(graph) + separator + serialize(keyring)`. It cannot
// appear inside either half, since both are CBOR Core Deterministic
// Encoding and this byte sequence is not a valid encoding of
// anything a top-level wireForm or wireKeyset slice could start or
// end with at a boundary.
var blobSeparator = []byte("\x00concord-blob-separator\x00")

// Load restores a team instance from blob, decoding the graph and
// keyring halves, re-reducing state, and verifying the local device
// can still compute a usable keyring from it.
func Load(params LoadParams) (*Team, error) {
	if params.Device == nil {
		return nil, fmt.Errorf("core: Load requires the local device")
	}
	logger := params.Logger
	if logger == nil {
		logger = slog.Default()
	}

	cut := indexOf(params.Blob, blobSeparator)
	if cut < 0 {
		return nil, fmt.Errorf("core: blob missing the graph/keyring separator")
	}
	graphBytes := params.Blob[:cut]
	keyringBytes := params.Blob[cut+len(blobSeparator):]

	g, err := graph.Deserialize(graphBytes)
	if err != nil {
		return nil, fmt.Errorf("core: deserializing graph: %w", err)
	}

	sequence, err := g.GetSequence(graph.TrivialResolver)
	if err != nil {
		return nil, fmt.Errorf("core: sequencing loaded graph: %w", err)
	}
	state, err := team.Reduce(sequence)
	if err != nil {
		return nil, fmt.Errorf("core: reducing loaded graph: %w", err)
	}

	persistedKeyring, err := keyset.DeserializeKeyring(keyringBytes)
	if err != nil {
		return nil, fmt.Errorf("core: deserializing keyring: %w", err)
	}

	keyring, err := keyset.Compute(deviceRootKeyset(params.Device), state.Lockboxes)
	if err != nil {
		return nil, fmt.Errorf("core: computing keyring after load: %w", err)
	}
	// persistedKeyring duplicates what Compute just reconstructed
	// from live lockboxes, minted fresh secret.Buffers of its own
	// when deserialized — release them, they serve no further
	// purpose once Compute's result takes over.
	closeKeyring(persistedKeyring, keyset.ID{})

	t := &Team{
		logger:   logger,
		clock:    nowUnix,
		graph:    g,
		state:    state,
		keyring:  keyring,
		device:   params.Device,
		userName: params.Device.UserName,
		store:    params.Store,
		events:   make(chan Event, eventBufferSize),
	}
	logger.Info("team loaded", "team", state.TeamName, "user", params.Device.UserName)
	return t, nil
}

// LoadFromGraphParams carries the fields [LoadFromGraph] needs.
type LoadFromGraphParams struct {
	Graph  *graph.Graph
	Device *identity.Device
	Store  storage.Store
	Logger *slog.Logger
}

// LoadFromGraph builds a [Team] directly from an already-deserialized
// graph rather than a [Team.Save] blob — the path a newly admitted
// member takes after [lib/connection]'s ACCEPT_INVITATION hands it
// the team's current graph (spec §4.F step 3). It shares [Load]'s
// core logic (re-reduce, then compute the local device's own keyring
// from the lockboxes that reduction yields) without requiring a
// previously persisted keyring blob: a brand-new member has none yet,
// and Compute only ever needs the device's own root keyset plus the
// graph's lockboxes to produce one.
func LoadFromGraph(params LoadFromGraphParams) (*Team, error) {
	if params.Device == nil {
		return nil, fmt.Errorf("core: LoadFromGraph requires the local device")
	}
	if params.Graph == nil {
		return nil, fmt.Errorf("core: LoadFromGraph requires a graph")
	}
	logger := params.Logger
	if logger == nil {
		logger = slog.Default()
	}

	sequence, err := params.Graph.GetSequence(graph.TrivialResolver)
	if err != nil {
		return nil, fmt.Errorf("core: sequencing received graph: %w", err)
	}
	state, err := team.Reduce(sequence)
	if err != nil {
		return nil, fmt.Errorf("core: reducing received graph: %w", err)
	}

	keyring, err := keyset.Compute(deviceRootKeyset(params.Device), state.Lockboxes)
	if err != nil {
		return nil, fmt.Errorf("core: computing keyring from received graph: %w", err)
	}

	t := &Team{
		logger:   logger,
		clock:    nowUnix,
		graph:    params.Graph,
		state:    state,
		keyring:  keyring,
		device:   params.Device,
		userName: params.Device.UserName,
		store:    params.Store,
		events:   make(chan Event, eventBufferSize),
	}
	logger.Info("team joined from received graph", "team", state.TeamName, "user", params.Device.UserName)
	return t, nil
}

// Save serializes the current graph and keyring into the blob form
// spec §6 defines, persisting it via the configured [storage.Store]
// if one was supplied, and always returning the blob so a caller
// without a Store can persist it another way.
func (t *Team) Save() ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.saveLocked()
}

func (t *Team) saveLocked() ([]byte, error) {
	graphBytes, err := t.graph.Serialize()
	if err != nil {
		return nil, fmt.Errorf("core: serializing graph: %w", err)
	}
	keyringBytes, err := t.keyring.Serialize()
	if err != nil {
		return nil, fmt.Errorf("core: serializing keyring: %w", err)
	}

	blob := make([]byte, 0, len(graphBytes)+len(blobSeparator)+len(keyringBytes))
	blob = append(blob, graphBytes...)
	blob = append(blob, blobSeparator...)
	blob = append(blob, keyringBytes...)

	if t.store != nil {
		if err := t.store.Save(context.Background(), blob); err != nil {
			return nil, fmt.Errorf("core: persisting blob: %w", err)
		}
	}
	return blob, nil
}

// Close releases the team instance's secret material: its local
// device keys and every keyset its keyring recovered. Idempotent.
func (t *Team) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.keyring.Close()
}

// deviceRootKeyset wraps device's own keyset as the root [keyset.Compute]
// fixpoints from, without copying or re-deriving its secret material:
// the returned value shares device.Keys' secret.Buffers, so it must
// never be closed directly (closing the keyring it seeds must skip
// this ID — see [closeKeyring]'s keep parameter).
func deviceRootKeyset(device *identity.Device) *keyset.Keyset {
	root := keyset.Redact(device.Keys)
	root.SigningSecret = device.Keys.SigningSecret
	root.EncryptSecret = device.Keys.EncryptSecret
	return root
}

func nowUnix() int64 { return time.Now().Unix() }

func indexOf(haystack, needle []byte) int {
	n := len(needle)
	for i := 0; i+n <= len(haystack); i++ {
		match := true
		for j := 0; j < n; j++ {
			if haystack[i+j] != needle[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

// closeKeyring releases every keyset in kr except keep, used when
// discarding a keyring that may alias the local device's own root
// keyset — closing that would strip the device of its own signing
// and unsealing capability.
func closeKeyring(kr *keyset.Keyring, keep keyset.ID) {
	for id, ks := range kr.All() {
		if id == keep {
			continue
		}
		ks.Close()
	}
}

