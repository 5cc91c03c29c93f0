package service

import (
	"log"
	"sync"

	"obsmacros/config"
	"obsmacros/models"
)

// MacroService owns the live config. The terminal loop and the HTTP API
// both reach the registry through it.
type MacroService struct {
	config *config.Config
	path   string
	mu     sync.RWMutex
}

func NewMacroService(cfg *config.Config, path string) *MacroService {
	return &MacroService{
		config: cfg,
		path:   path,
	}
}

// Bind assigns action to b, replacing any previous macro on that key
func (s *MacroService) Bind(b models.KeyBinding, action models.Action) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config.Macros.Insert(b, action)
	log.Printf("➕ Bound %s -> %s", b, action.Describe())
}

// Unbind removes the macro on b and reports whether one existed
func (s *MacroService) Unbind(b models.KeyBinding) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := s.config.Macros.Remove(b)
	if removed {
		log.Printf("➖ Unbound %s", b)
	}
	return removed
}

func (s *MacroService) Lookup(b models.KeyBinding) (models.Action, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config.Macros.Lookup(b)
}

// List returns all macros sorted by binding
func (s *MacroService) List() []models.Macro {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config.Macros.ListSorted()
}

func (s *MacroService) MacrosString() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config.MacrosString()
}

func (s *MacroService) Credentials() models.Credentials {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config.Credentials
}

func (s *MacroService) SetCredentials(creds models.Credentials) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config.Credentials = creds
}

func (s *MacroService) API() config.APIConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config.API
}

// Save persists the config to the path it was loaded from
func (s *MacroService) Save() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := config.Save(s.path, s.config); err != nil {
		log.Printf("❌ Failed to save config: %v", err)
		return err
	}
	log.Printf("💾 Saved %d macro(s) to %s", s.config.Macros.Len(), s.path)
	return nil
}
