package inmemdb

import (
	"sort"
	"sync"

	"github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/core/payment"
	"github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/core/user"
	"github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/core/verification"
)

// DB is an in-memory stand-in for the relational database, used by tests and local runs.
type DB struct {
	mu sync.RWMutex

	users    map[string]*user.User
	profiles map[string]*user.Profile
	roles    map[string]map[string]bool
	rows     map[string]map[string]int // {table: {userID: count}} for tables without a repository
	codes    []*verification.Code
	sales    []payment.Sale
	codeSeq  int64
	saleSeq  int64

	deletions []string
	failures  map[string]error
}

func Open() *DB {
	return &DB{
		users:    make(map[string]*user.User),
		profiles: make(map[string]*user.Profile),
		roles:    make(map[string]map[string]bool),
		rows:     make(map[string]map[string]int),
		failures: make(map[string]error),
	}
}

// FailOn makes the named operation return err. Operation names:
// create_user, create_code, invalidate_codes, create_sale, delete_user and delete:<table>.
func (db *DB) FailOn(op string, err error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.failures[op] = err
}

func (db *DB) failure(op string) error {
	return db.failures[op]
}

// AddRows records n rows of table belonging to userID.
func (db *DB) AddRows(table, userID string, n int) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.rows[table] == nil {
		db.rows[table] = make(map[string]int)
	}
	db.rows[table][userID] += n
}

// RowCount returns the number of rows of table belonging to userID.
func (db *DB) RowCount(table, userID string) int {
	db.mu.RLock()
	defer db.mu.RUnlock()

	switch table {
	case "profiles":
		if _, ok := db.profiles[userID]; ok {
			return 1
		}
		return 0
	case "user_roles":
		return len(db.roles[userID])
	case "verification_codes":
		var n int
		for _, c := range db.codes {
			if c.UserID == userID {
				n++
			}
		}
		return n
	}
	return db.rows[table][userID]
}

// Deletions lists the deletions performed, as "table:userID", in order.
func (db *DB) Deletions() []string {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return append([]string(nil), db.deletions...)
}

// Codes returns a copy of every stored verification code, oldest first.
func (db *DB) Codes() []verification.Code {
	db.mu.RLock()
	defer db.mu.RUnlock()
	codes := make([]verification.Code, 0, len(db.codes))
	for _, c := range db.codes {
		codes = append(codes, *c)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i].ID < codes[j].ID })
	return codes
}

// Sales returns a copy of every stored sale.
func (db *DB) Sales() []payment.Sale {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return append([]payment.Sale(nil), db.sales...)
}
