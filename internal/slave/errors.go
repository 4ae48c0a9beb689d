// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package slave

import (
	"errors"
	"fmt"

	"github.com/ffutop/modbus-slave/modbus/buffer"
)

// Errors returned by commands. Protocol validation failures are not errors:
// they are encoded as exception responses and the command returns nil.
var (
	ErrNullReference     = errors.New("slave: null reference")
	ErrRequestTruncated  = errors.New("slave: request truncated")
	ErrResponseTruncated = errors.New("slave: response truncated")
	ErrCallbackFailed    = errors.New("slave: callback failed")
)

func requestError(err error) error {
	if errors.Is(err, buffer.ErrFetcherEnd) {
		return ErrRequestTruncated
	}
	return err
}

func responseError(err error) error {
	if errors.Is(err, buffer.ErrEmitterEnd) {
		return ErrResponseTruncated
	}
	return err
}

func callbackError(op string, address uint16, err error) error {
	return fmt.Errorf("%w: %s coil %d: %w", ErrCallbackFailed, op, address, err)
}
