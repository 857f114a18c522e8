package player

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/godbus/dbus/v5"
	"github.com/rs/zerolog"
)

const (
	// MPRISPrefix is the bus name prefix shared by MPRIS media players.
	MPRISPrefix = "org.mpris.MediaPlayer2."
	// MPRISPath is the object path every MPRIS player exports.
	MPRISPath = dbus.ObjectPath("/org/mpris/MediaPlayer2")
	// MPRISPlayerInterface carries the transport methods.
	MPRISPlayerInterface = "org.mpris.MediaPlayer2.Player"
)

// MPRISBridge controls a media player over the D-Bus MPRIS interface.
type MPRISBridge struct {
	conn      *dbus.Conn
	preferred string
	exclude   string
	log       zerolog.Logger
}

// NewMPRIS creates a bridge on conn. preferred selects a player by full bus
// name or by its suffix ("vlc"); empty picks the first player found. exclude
// is skipped during discovery, typically this process's own MPRIS name.
func NewMPRIS(conn *dbus.Conn, preferred, exclude string, log zerolog.Logger) *MPRISBridge {
	return &MPRISBridge{
		conn:      conn,
		preferred: preferred,
		exclude:   exclude,
		log:       log.With().Str("component", "mpris").Logger(),
	}
}

// NewSystemBridge connects to the session bus and returns an MPRIS bridge,
// or Noop when no session bus is reachable.
func NewSystemBridge(preferred, exclude string, log zerolog.Logger) Bridge {
	conn, err := dbus.SessionBus()
	if err != nil {
		log.Warn().Err(err).Msg("session bus unavailable, external player disabled")
		return Noop{}
	}
	return NewMPRIS(conn, preferred, exclude, log)
}

// Play asks the player to start playback.
func (bridge *MPRISBridge) Play(ctx context.Context) error {
	return bridge.call(ctx, "Play")
}

// Pause asks the player to pause playback.
func (bridge *MPRISBridge) Pause(ctx context.Context) error {
	return bridge.call(ctx, "Pause")
}

// PreviousChapter asks the player to skip back.
func (bridge *MPRISBridge) PreviousChapter(ctx context.Context) error {
	return bridge.call(ctx, "Previous")
}

func (bridge *MPRISBridge) call(ctx context.Context, method string) error {
	target, err := bridge.resolve(ctx)
	if err != nil {
		return err
	}

	call := bridge.conn.Object(target, MPRISPath).CallWithContext(ctx, MPRISPlayerInterface+"."+method, 0)
	if call.Err != nil {
		return fmt.Errorf("mpris %s on %s: %w", method, target, call.Err)
	}
	bridge.log.Debug().Str("player", target).Str("method", method).Msg("mpris call delivered")
	return nil
}

func (bridge *MPRISBridge) resolve(ctx context.Context) (string, error) {
	var names []string
	err := bridge.conn.BusObject().CallWithContext(ctx, "org.freedesktop.DBus.ListNames", 0).Store(&names)
	if err != nil {
		return "", fmt.Errorf("list bus names: %w", err)
	}
	return PickPlayer(names, bridge.preferred, bridge.exclude)
}

// PickPlayer selects the MPRIS bus name to control from names.
func PickPlayer(names []string, preferred, exclude string) (string, error) {
	var players []string
	for _, name := range names {
		if !strings.HasPrefix(name, MPRISPrefix) || name == exclude {
			continue
		}
		players = append(players, name)
	}
	sort.Strings(players)

	if preferred == "" {
		if len(players) == 0 {
			return "", ErrUnavailable
		}
		return players[0], nil
	}

	for _, name := range players {
		if name == preferred || name == MPRISPrefix+preferred {
			return name, nil
		}
	}
	// Instance suffixes such as "vlc.instance1234".
	for _, name := range players {
		if strings.HasPrefix(name, MPRISPrefix+preferred+".") {
			return name, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnavailable, preferred)
}
