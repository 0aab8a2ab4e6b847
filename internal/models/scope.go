package models

import "strconv"

// GlobalContinentKey is the storage sentinel standing in for "no continent
// filter" inside composite unique keys, where NULL would break uniqueness.
const GlobalContinentKey int64 = -1

// ContinentScope distinguishes the global country pool from a single
// continent. The sentinel only appears at the storage boundary; domain code
// works with the tagged value.
type ContinentScope struct {
	continentID int64
	global      bool
}

func GlobalScope() ContinentScope {
	return ContinentScope{global: true}
}

func ContinentScopeOf(continentID int64) ContinentScope {
	return ContinentScope{continentID: continentID}
}

// ScopeFromPtr maps an optional continent id (nil = global) to a scope.
func ScopeFromPtr(continentID *int64) ContinentScope {
	if continentID == nil {
		return GlobalScope()
	}
	return ContinentScopeOf(*continentID)
}

// ScopeFromKey is the inverse of StorageKey.
func ScopeFromKey(key int64) ContinentScope {
	if key == GlobalContinentKey {
		return GlobalScope()
	}
	return ContinentScopeOf(key)
}

func (s ContinentScope) IsGlobal() bool {
	return s.global
}

func (s ContinentScope) ContinentID() (int64, bool) {
	if s.global {
		return 0, false
	}
	return s.continentID, true
}

// StorageKey returns the value used in composite unique keys.
func (s ContinentScope) StorageKey() int64 {
	if s.global {
		return GlobalContinentKey
	}
	return s.continentID
}

func (s ContinentScope) String() string {
	if s.global {
		return "global"
	}
	return strconv.FormatInt(s.continentID, 10)
}
