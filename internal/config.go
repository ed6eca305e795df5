package internal

import (
	"fmt"
	"strings"
	"time"
)

type Config struct {
	Host           string `env:"HOST,default=0.0.0.0"`
	Port           int    `env:"PORT,default=8084"`
	JwtSecret      string `env:"JWT_SECRET,required=true"`
	BadgerFilepath string `env:"BADGER_FILEPATH,required=true"`
	BlugeFilepath  string `env:"BLUGE_FILEPATH,required=true"`
	LogLevel       string `env:"LOG_LEVEL,default=INFO"`

	SendBufferSize     int `env:"SEND_BUFFER_SIZE,default=256"`
	RecorderBufferSize int `env:"RECORDER_BUFFER_SIZE,default=1024"`
	HistoryLimit       int `env:"HISTORY_LIMIT,default=50"`

	CensoredWords   string `env:"CENSORED_WORDS"`
	CharReplacement string `env:"CHARACTER_REPLACEMENT,default=*"`

	MaxMessageSize  int64         `env:"MAX_MESSAGE_SIZE,default=65536"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT,default=10s"`
	PongTimeout     time.Duration `env:"PONG_TIMEOUT,default=60s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s"`

	TelemetryInterval time.Duration `env:"TELEMETRY_INTERVAL,default=30s"`
	GCInterval        time.Duration `env:"GC_INTERVAL,default=5m"`
}

func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Words splits the comma-separated moderation list. An empty result
// means moderation stays disabled.
func (c Config) Words() []string {
	var words []string
	for _, word := range strings.Split(c.CensoredWords, ",") {
		if word = strings.TrimSpace(word); word != "" {
			words = append(words, word)
		}
	}
	return words
}

func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}
