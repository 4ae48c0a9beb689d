// Copyright (c) 2025-2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package device

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseAddressList parses a string of coil addresses (e.g. "1,2,5-10") into a slice.
func ParseAddressList(input string) ([]uint16, error) {
	var addrs []uint16
	parts := strings.Split(input, ",")
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if strings.Contains(part, "-") {
			// Range
			ranges := strings.Split(part, "-")
			if len(ranges) != 2 {
				return nil, fmt.Errorf("invalid range: %s", part)
			}
			start, err := parseAddress(ranges[0])
			if err != nil {
				return nil, fmt.Errorf("invalid start of range: %w", err)
			}
			end, err := parseAddress(ranges[1])
			if err != nil {
				return nil, fmt.Errorf("invalid end of range: %w", err)
			}
			if start > end {
				return nil, fmt.Errorf("start of range %d is greater than end %d", start, end)
			}
			for i := start; i <= end; i++ {
				addrs = append(addrs, uint16(i))
			}
		} else {
			// Single
			addr, err := parseAddress(part)
			if err != nil {
				return nil, fmt.Errorf("invalid address: %w", err)
			}
			addrs = append(addrs, uint16(addr))
		}
	}
	return addrs, nil
}

// parseAddress accepts decimal or 0x-prefixed hexadecimal coil addresses.
func parseAddress(s string) (int, error) {
	s = strings.TrimSpace(s)
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s, base = s[2:], 16
	}
	v, err := strconv.ParseUint(s, base, 32)
	if err != nil {
		return 0, err
	}
	if v > 0xFFFF {
		return 0, fmt.Errorf("address out of range: %d", v)
	}
	return int(v), nil
}
