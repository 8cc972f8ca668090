package accounts

import (
	"bytes"
	"sort"

	"golang.org/x/crypto/blake2b"

	"github.com/mundisnetwork/axis-sub000/pkg/types"
)

// deltaHashFanout is the number of children folded into one interior
// node of the delta hash tree.
const deltaHashFanout = 16

// ComputeAccountsDeltaHash commits to the set of accounts a batch
// touched. Leaves are the BLAKE2b-256 account hashes over the pubkey-
// sorted set; interior nodes fold up to deltaHashFanout children with
// BLAKE2b-256 as well, so the whole tree uses the one hash function.
// The empty set hashes to the zero hash.
func ComputeAccountsDeltaHash(refs []types.AccountRef) types.Hash {
	if len(refs) == 0 {
		return types.ZeroHash
	}

	ordered := make([]types.AccountRef, len(refs))
	copy(ordered, refs)
	sort.Slice(ordered, func(i, j int) bool {
		return bytes.Compare(ordered[i].Pubkey[:], ordered[j].Pubkey[:]) < 0
	})

	level := make([]types.Hash, len(ordered))
	for i, ref := range ordered {
		level[i] = ref.Account.Hash(ref.Pubkey)
	}
	for len(level) > 1 {
		level = foldLevel(level)
	}
	return level[0]
}

// foldLevel reduces one tree level to its parents.
func foldLevel(nodes []types.Hash) []types.Hash {
	parents := make([]types.Hash, 0, (len(nodes)+deltaHashFanout-1)/deltaHashFanout)
	for start := 0; start < len(nodes); start += deltaHashFanout {
		end := start + deltaHashFanout
		if end > len(nodes) {
			end = len(nodes)
		}
		parents = append(parents, foldNodes(nodes[start:end]))
	}
	return parents
}

// foldNodes hashes a group of sibling nodes into their parent. A group
// of one passes through unchanged, so a lone trailing subtree does not
// accumulate extra hashing on its way up.
func foldNodes(nodes []types.Hash) types.Hash {
	if len(nodes) == 1 {
		return nodes[0]
	}
	buf := make([]byte, 0, len(nodes)*32)
	for _, node := range nodes {
		buf = append(buf, node[:]...)
	}
	return blake2b.Sum256(buf)
}
