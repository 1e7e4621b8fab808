package credentials

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/zalando/go-keyring"
	"go.uber.org/zap"
)

const (
	// DefaultService is the keyring service the API key is stored under.
	DefaultService = "CryptoAnalyzerApp"
	// DefaultUser is the keyring account name for the API key.
	DefaultUser = "api_key"
)

var (
	ErrNotFound      = errors.New("credentials: secret not found")
	ErrMissingAPIKey = errors.New("credentials: API key is required")
)

// Store reads and writes named secrets.
type Store interface {
	Get(service, user string) (string, error)
	Set(service, user, secret string) error
}

// Keyring is a Store backed by the OS credential manager.
type Keyring struct{}

func (Keyring) Get(service, user string) (string, error) {
	s, err := keyring.Get(service, user)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNotFound
	}
	return s, err
}

func (Keyring) Set(service, user, secret string) error {
	return keyring.Set(service, user, secret)
}

// Prompter asks the user for the API key. An empty answer means cancel.
type Prompter interface {
	Prompt() (string, error)
}

// LinePrompter reads a single line from In after writing a message to Out.
type LinePrompter struct {
	In  io.Reader
	Out io.Writer
}

func (p LinePrompter) Prompt() (string, error) {
	if p.Out != nil {
		fmt.Fprint(p.Out, "Enter your CoinMarketCap API key: ")
	}
	line, err := bufio.NewReader(p.In).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Resolver finds the API key: explicit value, then store, then prompt.
// A prompted key is persisted to the store.
type Resolver struct {
	Service string
	User    string
	Store   Store
	Prompt  Prompter
	Log     *zap.Logger
}

func (r Resolver) Resolve(explicit string) (string, error) {
	log := r.Log
	if log == nil {
		log = zap.NewNop()
	}
	service, user := r.Service, r.User
	if service == "" {
		service = DefaultService
	}
	if user == "" {
		user = DefaultUser
	}

	if key := strings.TrimSpace(explicit); key != "" {
		log.Debug("api key from configuration")
		return key, nil
	}

	if r.Store != nil {
		key, err := r.Store.Get(service, user)
		switch {
		case err == nil && key != "":
			log.Debug("api key from credential store", zap.String("service", service))
			return key, nil
		case err != nil && !errors.Is(err, ErrNotFound):
			// an unavailable keyring falls through to the prompt
			log.Warn("credential store unavailable", zap.Error(err))
		}
	}

	if r.Prompt == nil {
		return "", ErrMissingAPIKey
	}
	key, err := r.Prompt.Prompt()
	if err != nil {
		return "", fmt.Errorf("prompt api key: %w", err)
	}
	if key == "" {
		return "", ErrMissingAPIKey
	}
	if r.Store != nil {
		if err := r.Store.Set(service, user, key); err != nil {
			log.Warn("persist api key", zap.Error(err))
		} else {
			log.Info("api key stored", zap.String("service", service))
		}
	}
	return key, nil
}
