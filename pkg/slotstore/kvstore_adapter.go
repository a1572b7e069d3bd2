package slotstore

import (
	storetypes "cosmossdk.io/store/types"
)

// KVStoreBackend adapts a Cosmos KVStore (as used by the teacher's own
// Keeper.GetStore) to the Backend interface, so the engine can be
// embedded inside a chain module that already carries a store key and a
// module-scoped KVStore the way x/orderbook does in the teacher tree.
type KVStoreBackend struct {
	store storetypes.KVStore
}

func NewKVStoreBackend(store storetypes.KVStore) *KVStoreBackend {
	return &KVStoreBackend{store: store}
}

func (k *KVStoreBackend) Sload(key [32]byte) [32]byte {
	var out [32]byte
	bz := k.store.Get(key[:])
	copy(out[:], bz)
	return out
}

func (k *KVStoreBackend) Sstore(key [32]byte, val [32]byte) {
	if val == ([32]byte{}) {
		k.store.Delete(key[:])
		return
	}
	k.store.Set(key[:], val[:])
}
