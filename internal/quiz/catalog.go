package quiz

import (
	"sync/atomic"

	"hirescore/internal/errors"
)

// Catalog hands out the current Bank. Reloads swap in a new immutable Bank;
// readers holding the old one are unaffected.
type Catalog struct {
	bank   atomic.Pointer[Bank]
	path   string
	logger *errors.Logger
}

// NewCatalog loads the bank at path, or the compiled-in bank when path is empty
func NewCatalog(path string, logger *errors.Logger) (*Catalog, error) {
	c := &Catalog{path: path, logger: logger}

	var (
		bank *Bank
		err  error
	)
	if path == "" {
		bank, err = DefaultBank()
	} else {
		bank, err = LoadBankFile(path)
	}
	if err != nil {
		return nil, err
	}

	c.bank.Store(bank)
	logger.Info("Question bank loaded",
		"path", c.sourceName(),
		"version", bank.Version(),
		"categories", bank.Categories())
	return c, nil
}

// NewStaticCatalog wraps an already built bank
func NewStaticCatalog(bank *Bank, logger *errors.Logger) *Catalog {
	c := &Catalog{logger: logger}
	c.bank.Store(bank)
	return c
}

// Bank returns the current bank
func (c *Catalog) Bank() *Bank {
	return c.bank.Load()
}

// Path returns the watched bank file, empty for the compiled-in bank
func (c *Catalog) Path() string {
	return c.path
}

// Reload re-reads the bank file. A bank that fails to load is rejected and
// the previous one stays active.
func (c *Catalog) Reload() error {
	if c.path == "" {
		return nil
	}

	bank, err := LoadBankFile(c.path)
	if err != nil {
		c.logger.LogError(err, "Question bank reload rejected, keeping previous bank", "path", c.path)
		return err
	}

	c.bank.Store(bank)
	c.logger.Info("Question bank reloaded", "path", c.path, "version", bank.Version())
	return nil
}

func (c *Catalog) sourceName() string {
	if c.path == "" {
		return "embedded:" + embeddedBankPath
	}
	return c.path
}
