package internal

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config holds every server knob, loaded from the environment. The
// capacity bound and the read buffer are configuration, not constants, so
// deployments can size the relay without a rebuild.
type Config struct {
	Host            string        `env:"HOST,default=0.0.0.0"`
	Port            int           `env:"PORT,default=9000" validate:"min=1,max=65535"`
	WSPort          int           `env:"WS_PORT,default=0" validate:"min=0,max=65535"`
	MaxClients      int           `env:"MAX_CLIENTS,default=1024" validate:"min=1"`
	ReadBufferSize  int           `env:"READ_BUFFER_SIZE,default=4096" validate:"min=64"`
	TranscriptPath  string        `env:"TRANSCRIPT_PATH,default=chat.log" validate:"required"`
	BadgerFilepath  string        `env:"BADGER_FILEPATH"`
	ArchivePageSize *int          `env:"ARCHIVE_PAGE_SIZE"`
	LogLevel        string        `env:"LOG_LEVEL,default=INFO"`
	MetricInterval  time.Duration `env:"METRIC_INTERVAL,default=30s"`
	RestartInterval time.Duration `env:"RESTART_INTERVAL,default=200ms"`
	CensoredWords   string        `env:"CENSORED_WORDS"`
	CharReplacement string        `env:"CHARACTER_REPLACEMENT,default=*"`
}

func (c Config) Validate() error {
	return validator.New().Struct(c)
}

func (c Config) ListenAddr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c Config) WSListenAddr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.WSPort))
}

// Words splits the comma-separated censored word list, dropping blanks.
func (c Config) Words() []string {
	var words []string
	for _, token := range strings.Split(c.CensoredWords, ",") {
		if token = strings.TrimSpace(token); token != "" {
			words = append(words, token)
		}
	}
	return words
}

func (c Config) ReplacementRune() (rune, error) {
	r := []rune(c.CharReplacement)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			c.CharReplacement,
		)
	}
	return r[0], nil
}
