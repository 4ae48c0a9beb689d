// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package persistence

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/ffutop/modbus-slave/internal/device/model"
)

const upsertCoil = "INSERT INTO modbus_coils (address, value) VALUES (?, ?) " +
	"ON CONFLICT(address) DO UPDATE SET value=excluded.value"

// SQLStorage implements persistence using a SQL database.
// Only coils that have been written are stored; missing rows read as OFF.
type SQLStorage struct {
	driver string
	dsn    string
	db     *sql.DB
	model  *model.CoilModel
}

// NewSQLStorage creates a new SQLStorage.
// Note: The driver (e.g., sqlite3) must be imported by the caller.
func NewSQLStorage(driver, dsn string) *SQLStorage {
	return &SQLStorage{
		driver: driver,
		dsn:    dsn,
	}
}

// Load connects to the DB and loads the coil image.
func (s *SQLStorage) Load() (*model.CoilModel, error) {
	db, err := sql.Open(s.driver, s.dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}

	m := model.NewCoilModel()
	rows, err := db.Query("SELECT address, value FROM modbus_coils")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to query coils: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var addr, val int
		if err := rows.Scan(&addr, &val); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to scan coil: %w", err)
		}
		if addr < 0 || addr > model.MaxAddress {
			continue
		}
		m.SetCoil(uint16(addr), val != 0)
	}
	if err := rows.Err(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to iterate coils: %w", err)
	}

	s.db = db
	s.model = m
	return m, nil
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
	CREATE TABLE IF NOT EXISTS modbus_coils (
		address INTEGER PRIMARY KEY,
		value INTEGER NOT NULL
	);
	`)
	return err
}

// Save writes every coil that is ON, and clears rows of coils that are OFF.
func (s *SQLStorage) Save(m *model.CoilModel) error {
	if s.db == nil {
		return fmt.Errorf("db is not open")
	}
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM modbus_coils"); err != nil {
		tx.Rollback()
		return err
	}
	for addr, v := range m.Coils {
		if v == 0 {
			continue
		}
		if _, err := tx.Exec(upsertCoil, addr, 1); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// OnWrite upserts the changed coils to the DB in one transaction.
func (s *SQLStorage) OnWrite(address uint16, quantity int) {
	if s.db == nil || s.model == nil {
		return
	}
	if err := s.persist(address, quantity); err != nil {
		slog.Error("Failed to persist coils", "address", address, "quantity", quantity, "err", err)
	}
}

func (s *SQLStorage) persist(address uint16, quantity int) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	for i := 0; i < quantity; i++ {
		addr := int(address) + i
		if addr > model.MaxAddress {
			break
		}
		if _, err := tx.Exec(upsertCoil, addr, int(s.model.Coils[addr])); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLStorage) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
