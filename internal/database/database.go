package database

import (
	"fmt"
	"log"
	"net"
	"sync/atomic"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver

	"socialnet/internal/config"
)

// Cluster routes writes to the master pool and spreads reads over the
// replica pools round-robin. With no replicas configured, reads fall
// back to the master.
type Cluster struct {
	master   *sqlx.DB
	replicas []*sqlx.DB
	next     atomic.Uint64
}

func Connect(cfg *config.Config) (*Cluster, error) {
	master, err := connect(cfg, cfg.PGAuthorityMaster, cfg.MasterPoolMaxSize)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to master: %w", err)
	}

	replicas := make([]*sqlx.DB, 0, len(cfg.PGAuthorityReplicas))
	for _, addr := range cfg.PGAuthorityReplicas {
		replica, err := connect(cfg, addr, cfg.ReplicaPoolMaxSize)
		if err != nil {
			master.Close()
			for _, r := range replicas {
				r.Close()
			}
			return nil, fmt.Errorf("failed to connect to replica %s: %w", addr, err)
		}
		replicas = append(replicas, replica)
	}

	log.Printf("[Database] Connected: master=%s replicas=%d", cfg.PGAuthorityMaster, len(replicas))
	return &Cluster{master: master, replicas: replicas}, nil
}

func connect(cfg *config.Config, addr string, poolMaxSize int) (*sqlx.DB, error) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, fmt.Errorf("invalid authority address %q: %w", addr, err)
	}

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, cfg.PGUser, cfg.PGPassword, cfg.PGDBName, cfg.PGSSLMode)

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(poolMaxSize)
	db.SetMaxIdleConns(poolMaxSize)

	return db, nil
}

// Master returns the writable pool.
func (c *Cluster) Master() *sqlx.DB {
	return c.master
}

// Replica returns the next read pool round-robin.
func (c *Cluster) Replica() *sqlx.DB {
	if len(c.replicas) == 0 {
		return c.master
	}
	n := c.next.Add(1)
	return c.replicas[(n-1)%uint64(len(c.replicas))]
}

func (c *Cluster) Close() error {
	err := c.master.Close()
	for _, r := range c.replicas {
		if cerr := r.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
