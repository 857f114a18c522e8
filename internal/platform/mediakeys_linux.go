//go:build linux

package platform

import (
	"fmt"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/prop"
	"github.com/rs/zerolog"

	"sleeptimer/internal/core/input"
	"sleeptimer/internal/core/session"
	"sleeptimer/internal/player"
)

const (
	mprisRootInterface = "org.mpris.MediaPlayer2"

	// restingVolume is where Volume is parked once a client drives it to the
	// floor, so later decreases stay visible.
	restingVolume = 0.5
)

// MediaKeys presents the timer as an MPRIS player so desktop media keys and
// volume changes reach it.
type MediaKeys struct {
	conn   *dbus.Conn
	props  *prop.Properties
	handle ButtonHandler
	onQuit func()
	log    zerolog.Logger

	mu     sync.Mutex
	volume float64
}

// ListenMediaKeys claims busName on a private session-bus connection and
// forwards media keys to handle. onQuit runs when a client asks the player to quit.
func ListenMediaKeys(busName string, handle ButtonHandler, onQuit func(), log zerolog.Logger) (*MediaKeys, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("connect session bus: %w", err)
	}
	keys := newMediaKeys(handle, onQuit, log)
	keys.conn = conn

	if err := conn.Export(mprisRoot{keys: keys}, player.MPRISPath, mprisRootInterface); err != nil {
		conn.Close()
		return nil, fmt.Errorf("export %s: %w", mprisRootInterface, err)
	}
	if err := conn.Export(mprisPlayer{keys: keys}, player.MPRISPath, player.MPRISPlayerInterface); err != nil {
		conn.Close()
		return nil, fmt.Errorf("export %s: %w", player.MPRISPlayerInterface, err)
	}
	props, err := prop.Export(conn, player.MPRISPath, keys.propertyMap(busName))
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("export properties: %w", err)
	}
	keys.props = props

	reply, err := conn.RequestName(busName, dbus.NameFlagDoNotQueue)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("request %s: %w", busName, err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		conn.Close()
		return nil, fmt.Errorf("request %s: name already owned", busName)
	}

	keys.log.Info().Str("bus_name", busName).Msg("media keys listening")
	return keys, nil
}

func newMediaKeys(handle ButtonHandler, onQuit func(), log zerolog.Logger) *MediaKeys {
	if onQuit == nil {
		onQuit = func() {}
	}
	return &MediaKeys{
		handle: handle,
		onQuit: onQuit,
		log:    log.With().Str("component", "mediakeys").Logger(),
		volume: 1,
	}
}

// Follow mirrors session state into PlaybackStatus until stream is closed.
func (keys *MediaKeys) Follow(stream <-chan session.Snapshot) {
	for snapshot := range stream {
		if keys.props == nil {
			continue
		}
		keys.props.SetMust(player.MPRISPlayerInterface, "PlaybackStatus", playbackStatus(snapshot.State))
	}
}

// Close releases the bus name and the connection.
func (keys *MediaKeys) Close() error {
	if keys == nil || keys.conn == nil {
		return nil
	}
	return keys.conn.Close()
}

func (keys *MediaKeys) press(button input.Button) {
	consumed := keys.handle(input.RawEvent{Button: button})
	keys.log.Debug().Str("button", string(button)).Bool("consumed", consumed).Msg("media key")
}

func (keys *MediaKeys) onVolume(change *prop.Change) *dbus.Error {
	volume, ok := change.Value.(float64)
	if !ok {
		return prop.ErrInvalidArg
	}
	keys.mu.Lock()
	// Clients clamp at zero, so a write at the floor is still a press.
	lowered := volume < keys.volume || volume <= 0
	floored := volume <= 0
	keys.volume = volume
	if floored {
		keys.volume = restingVolume
	}
	keys.mu.Unlock()

	if lowered {
		keys.press(input.ButtonVolumeDown)
	}
	if floored && keys.props != nil {
		// The prop lock is held while this callback runs.
		go keys.props.SetMust(player.MPRISPlayerInterface, "Volume", restingVolume)
	}
	return nil
}

func (keys *MediaKeys) currentVolume() float64 {
	keys.mu.Lock()
	defer keys.mu.Unlock()
	return keys.volume
}

func (keys *MediaKeys) propertyMap(busName string) prop.Map {
	readOnly := func(value interface{}) *prop.Prop {
		return &prop.Prop{Value: value, Emit: prop.EmitFalse}
	}
	return prop.Map{
		mprisRootInterface: {
			"Identity":            readOnly(busName),
			"CanQuit":             readOnly(true),
			"CanRaise":            readOnly(false),
			"HasTrackList":        readOnly(false),
			"SupportedUriSchemes": readOnly([]string{}),
			"SupportedMimeTypes":  readOnly([]string{}),
		},
		player.MPRISPlayerInterface: {
			"PlaybackStatus": {Value: "Stopped", Emit: prop.EmitTrue},
			"Volume":         {Value: 1.0, Writable: true, Emit: prop.EmitTrue, Callback: keys.onVolume},
			"Rate":           readOnly(1.0),
			"MinimumRate":    readOnly(1.0),
			"MaximumRate":    readOnly(1.0),
			"Position":       readOnly(int64(0)),
			"Metadata":       readOnly(map[string]dbus.Variant{}),
			"CanControl":     readOnly(true),
			"CanPlay":        readOnly(true),
			"CanPause":       readOnly(true),
			"CanSeek":        readOnly(false),
			"CanGoNext":      readOnly(false),
			"CanGoPrevious":  readOnly(false),
		},
	}
}

type mprisRoot struct {
	keys *MediaKeys
}

func (root mprisRoot) Raise() *dbus.Error { return nil }

func (root mprisRoot) Quit() *dbus.Error {
	go root.keys.onQuit()
	return nil
}

type mprisPlayer struct {
	keys *MediaKeys
}

func (p mprisPlayer) Play() *dbus.Error {
	p.keys.press(input.ButtonMediaPlay)
	return nil
}

func (p mprisPlayer) PlayPause() *dbus.Error {
	p.keys.press(input.ButtonMediaPlay)
	return nil
}

func (p mprisPlayer) Pause() *dbus.Error {
	p.keys.press(input.ButtonMediaPause)
	return nil
}

func (p mprisPlayer) Stop() *dbus.Error {
	p.keys.press(input.ButtonMediaPause)
	return nil
}

func (p mprisPlayer) Next() *dbus.Error { return nil }

func (p mprisPlayer) Previous() *dbus.Error { return nil }

func (p mprisPlayer) Seek(int64) *dbus.Error { return nil }
