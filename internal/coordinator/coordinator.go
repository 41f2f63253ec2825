package coordinator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/luvmdy/SyncTrayzor/internal/domain"
	"github.com/luvmdy/SyncTrayzor/internal/ports"
	"github.com/luvmdy/SyncTrayzor/pkg/events"
	"github.com/luvmdy/SyncTrayzor/pkg/log"
	"github.com/luvmdy/SyncTrayzor/pkg/syncslot"
)

// DefaultConnectTimeout bounds the API probe after the daemon process has
// been observed starting.
const DefaultConnectTimeout = 60 * time.Second

// Config carries everything the coordinator needs to launch and reach the
// daemon.
type Config struct {
	ExecutablePath  string
	Address         string // host:port of the daemon's API, e.g. "127.0.0.1:8384"
	APIKey          string
	HomeDir         string
	ExtraFlags      []string
	ExtraEnv        map[string]string
	DebugFacilities []string
	ConnectTimeout  time.Duration
	DenyUpgrade     bool
	LowPriority     bool
	HideDeviceIDs   bool
}

// Validate checks the fields without which the coordinator cannot work.
func (c *Config) Validate() error {
	if c.ExecutablePath == "" {
		return fmt.Errorf("%w: executable path is required", domain.ErrInvalidConfig)
	}
	if c.Address == "" {
		return fmt.Errorf("%w: api address is required", domain.ErrInvalidConfig)
	}
	if c.APIKey == "" {
		return fmt.Errorf("%w: api key is required", domain.ErrInvalidConfig)
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = DefaultConnectTimeout
	}
	return nil
}

// StateChange is the payload of a state-changed notification.
type StateChange struct {
	From domain.RunState
	To   domain.RunState
}

// Deps are the injected collaborators. All fields are required.
type Deps struct {
	Supervisor    ports.ProcessSupervisor
	ClientFactory ports.APIClientFactory
	Folders       ports.FolderManager
	Devices       ports.DeviceManager

	// Watcher constructors. The coordinator supplies the client source
	// (its own slot) and itself as the handler.
	NewEventWatcher       func(ports.ClientSource, ports.EventHandler) ports.EventWatcher
	NewConnectionsWatcher func(ports.ClientSource, ports.ConnectionStatsHandler) ports.ConnectionsWatcher

	Logger log.Logger
}

// Coordinator is the lifecycle coordinator for the managed daemon.
type Coordinator struct {
	cfg    Config
	logger log.Logger

	supervisor ports.ProcessSupervisor
	factory    ports.APIClientFactory
	folders    ports.FolderManager
	devices    ports.DeviceManager
	dispatcher *events.Dispatcher

	// stateMu guards state. Leaf decisions only; released before apiMu is
	// taken.
	stateMu sync.Mutex
	state   domain.RunState

	// apiMu guards the API-layer tuple below as a unit.
	apiMu              sync.Mutex
	clientSlot         *syncslot.Slot[ports.APIClient]
	sessionCtx         context.Context
	sessionCancel      context.CancelFunc
	eventWatcher       ports.EventWatcher
	connectionsWatcher ports.ConnectionsWatcher

	// propMu guards the published properties.
	propMu             sync.RWMutex
	snapshot           domain.SystemSnapshot
	debugFacilities    domain.DebugFacilities
	stats              domain.ConnectionStats
	startedAt          time.Time
	lastConnectivityAt time.Time
	dataLoaded         bool

	// startMu guards the one pending Start() waiter.
	startMu     sync.Mutex
	startResult chan error

	stateListeners   listenerSet[StateChange]
	dataListeners    listenerSet[struct{}]
	logListeners     listenerSet[string]
	statsListeners   listenerSet[domain.ConnectionStats]
	exitErrListeners listenerSet[struct{}]

	runDone chan struct{}
}

// New wires a coordinator and starts its control loop. Call Close when
// done with it.
func New(cfg Config, deps Deps) (*Coordinator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := deps.Logger
	if logger == nil {
		logger = log.NewNoop()
	}

	c := &Coordinator{
		cfg:        cfg,
		logger:     logger.With(log.String("component", "coordinator")),
		supervisor: deps.Supervisor,
		factory:    deps.ClientFactory,
		folders:    deps.Folders,
		devices:    deps.Devices,
		dispatcher: events.NewDispatcher(),
		state:      domain.StateStopped,
		clientSlot: syncslot.New[ports.APIClient](domain.ErrNotStarted),
		runDone:    make(chan struct{}),
	}
	c.eventWatcher = deps.NewEventWatcher(c.clientSlot.Get, c)
	c.connectionsWatcher = deps.NewConnectionsWatcher(c.clientSlot.Get, c)

	go c.run()
	return c, nil
}

// run is the control loop consuming supervisor events. It exits when the
// supervisor's event channel is closed.
func (c *Coordinator) run() {
	defer close(c.runDone)
	for ev := range c.supervisor.Events() {
		switch ev.Kind {
		case ports.ProcessStarting:
			c.SetState(domain.StateStarting)
			go c.startSession()
		case ports.ProcessRestarted:
			c.SetState(domain.StateRestarting)
		case ports.ProcessStopped:
			c.SetState(domain.StateStopped)
			if ev.ExitStatus == domain.ExitError {
				listeners := c.exitErrListeners.snapshot()
				c.dispatcher.Post(func() {
					for _, fn := range listeners {
						fn(struct{}{})
					}
				})
			}
		case ports.ProcessLogLine:
			line := ev.Line
			listeners := c.logListeners.snapshot()
			c.dispatcher.Post(func() {
				for _, fn := range listeners {
					fn(line)
				}
			})
		}
	}
}

// Close releases the coordinator's goroutines. The daemon process is not
// touched; stop or kill it first if that is wanted.
func (c *Coordinator) Close() {
	<-c.runDone
	c.dispatcher.Close()
}

// State returns the current run state.
func (c *Coordinator) State() domain.RunState {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	return c.state
}

// IsDataLoaded reports whether the current session has finished its
// startup data loading.
func (c *Coordinator) IsDataLoaded() bool {
	c.propMu.RLock()
	defer c.propMu.RUnlock()
	return c.dataLoaded
}

// SystemSnapshot returns the version/system record of the current run.
// Zero while no session has completed startup.
func (c *Coordinator) SystemSnapshot() domain.SystemSnapshot {
	c.propMu.RLock()
	defer c.propMu.RUnlock()
	return c.snapshot
}

// DebugFacilities returns the daemon's debug facility capabilities.
func (c *Coordinator) DebugFacilities() domain.DebugFacilities {
	c.propMu.RLock()
	defer c.propMu.RUnlock()
	return c.debugFacilities
}

// ConnectionStats returns the most recent aggregate transfer counters.
func (c *Coordinator) ConnectionStats() domain.ConnectionStats {
	c.propMu.RLock()
	defer c.propMu.RUnlock()
	return c.stats
}

// StartedAt returns when data finished loading for the current run.
func (c *Coordinator) StartedAt() time.Time {
	c.propMu.RLock()
	defer c.propMu.RUnlock()
	return c.startedAt
}

// LastConnectivityEventAt returns the time of the last device
// connect/disconnect observation.
func (c *Coordinator) LastConnectivityEventAt() time.Time {
	c.propMu.RLock()
	defer c.propMu.RUnlock()
	return c.lastConnectivityAt
}

// Config returns the coordinator's configuration.
func (c *Coordinator) Config() Config {
	return c.cfg
}

// SubscribeStateChanged registers a state-changed listener. All listeners
// run on the dispatch goroutine; delivery for a given transition happens
// after the state lock is released, so handlers never observe stale state
// when reading coordinator properties.
func (c *Coordinator) SubscribeStateChanged(fn func(StateChange)) (unsubscribe func()) {
	return c.stateListeners.add(fn)
}

// SubscribeDataLoaded registers a data-loaded listener. It fires once per
// successful session and never re-fires on reload.
func (c *Coordinator) SubscribeDataLoaded(fn func()) (unsubscribe func()) {
	return c.dataListeners.add(func(struct{}) { fn() })
}

// SubscribeMessageLogged registers a listener for daemon output lines.
func (c *Coordinator) SubscribeMessageLogged(fn func(line string)) (unsubscribe func()) {
	return c.logListeners.add(fn)
}

// SubscribeConnectionStats registers a listener for replaced transfer
// totals.
func (c *Coordinator) SubscribeConnectionStats(fn func(domain.ConnectionStats)) (unsubscribe func()) {
	return c.statsListeners.add(fn)
}

// SubscribeProcessExitedWithError registers a listener fired when the
// daemon terminates with a non-ok status.
func (c *Coordinator) SubscribeProcessExitedWithError(fn func()) (unsubscribe func()) {
	return c.exitErrListeners.add(func(struct{}) { fn() })
}

// --- watcher handlers ---

// OnConfigSaved implements ports.EventHandler. The daemon saved a new
// configuration; incremental tracking is stale.
func (c *Coordinator) OnConfigSaved() {
	go c.reloadConfigData("config saved")
}

// OnEventsSkipped implements ports.EventHandler. The event stream lost
// events, so incremental tracking can no longer be trusted.
func (c *Coordinator) OnEventsSkipped() {
	go c.reloadConfigData("events skipped")
}

// OnDeviceConnected implements ports.EventHandler.
func (c *Coordinator) OnDeviceConnected(deviceID string) {
	c.recordConnectivity(deviceID, true)
}

// OnDeviceDisconnected implements ports.EventHandler.
func (c *Coordinator) OnDeviceDisconnected(deviceID string) {
	c.recordConnectivity(deviceID, false)
}

func (c *Coordinator) recordConnectivity(deviceID string, connected bool) {
	now := time.Now()
	c.devices.SetConnected(deviceID, connected, now)
	c.propMu.Lock()
	c.lastConnectivityAt = now
	c.propMu.Unlock()
}

// OnConnectionStatsChanged implements ports.ConnectionStatsHandler. Each
// update replaces the previous totals.
func (c *Coordinator) OnConnectionStatsChanged(stats domain.ConnectionStats) {
	c.propMu.Lock()
	c.stats = stats
	c.propMu.Unlock()

	listeners := c.statsListeners.snapshot()
	c.dispatcher.Post(func() {
		for _, fn := range listeners {
			fn(stats)
		}
	})
}
