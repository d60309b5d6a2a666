package nvm

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/moffa90/go-flxboot/protocol"
)

// Device is the raw internal-flash controller. EraseRow and Write start an
// operation and return immediately; Ready reports completion.
type Device interface {
	Ready() bool
	EraseRow(addr uint32) error
	Write(addr uint32, data []byte) error
	Read(addr uint32, p []byte) error
}

// DefaultMaxReadyPolls bounds how long the controller waits for an
// erase or write to complete.
const DefaultMaxReadyPolls = 100000

// Controller serializes erase/write on a Device, waiting for the device to
// report ready before and after each operation with a bounded poll.
type Controller struct {
	dev           Device
	region        Region
	maxReadyPolls int
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithMaxReadyPolls bounds the ready polling loop. Values below 1 are ignored.
func WithMaxReadyPolls(n int) ControllerOption {
	return func(c *Controller) {
		if n > 0 {
			c.maxReadyPolls = n
		}
	}
}

// NewController wraps dev for the given partition. It panics if region
// fails Validate.
func NewController(dev Device, region Region, opts ...ControllerOption) *Controller {
	if dev == nil {
		panic("device cannot be nil")
	}
	if err := region.Validate(); err != nil {
		panic(fmt.Sprintf("invalid region %s: %v", region, err))
	}
	c := &Controller{
		dev:           dev,
		region:        region,
		maxReadyPolls: DefaultMaxReadyPolls,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Region returns the partition this controller manages.
func (c *Controller) Region() Region {
	return c.region
}

func (c *Controller) waitReady(op string) error {
	for i := 0; i < c.maxReadyPolls; i++ {
		if c.dev.Ready() {
			return nil
		}
	}
	return &protocol.TimeoutError{Operation: op, Attempts: c.maxReadyPolls}
}

// EraseRow erases the row at addr and waits for completion.
func (c *Controller) EraseRow(addr uint32) error {
	if err := c.waitReady("nvm erase"); err != nil {
		return err
	}
	if err := c.dev.EraseRow(addr); err != nil {
		return errors.Wrapf(err, "nvm erase 0x%08X", addr)
	}
	return c.waitReady("nvm erase")
}

// Write programs data at addr and waits for completion. len(data) must
// not exceed one page.
func (c *Controller) Write(addr uint32, data []byte) error {
	if uint32(len(data)) > c.region.PageSize {
		return errors.Errorf("nvm write of %d bytes exceeds page size %d", len(data), c.region.PageSize)
	}
	if err := c.waitReady("nvm write"); err != nil {
		return err
	}
	if err := c.dev.Write(addr, data); err != nil {
		return errors.Wrapf(err, "nvm write 0x%08X", addr)
	}
	return c.waitReady("nvm write")
}

// Read copies internal flash contents at addr into p.
func (c *Controller) Read(addr uint32, p []byte) error {
	if err := c.dev.Read(addr, p); err != nil {
		return errors.Wrapf(err, "nvm read 0x%08X", addr)
	}
	return nil
}
