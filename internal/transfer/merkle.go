package transfer

import "github.com/tallowteam/tallow-go/internal/primitives"

// MerkleTree is built over the per-chunk plaintext hashes of a transfer,
// letting either side request a proof of inclusion for an arbitrary leaf.
type MerkleTree struct {
	leaves [][32]byte
	nodes  [][32]byte
}

// BuildMerkleTree builds a tree bottom-up from leaf hashes. An odd node at
// any level is promoted unchanged to the level above.
func BuildMerkleTree(leaves [][32]byte) *MerkleTree {
	t := &MerkleTree{leaves: leaves}
	if len(leaves) == 0 {
		return t
	}

	current := leaves
	for len(current) > 1 {
		next := make([][32]byte, 0, (len(current)+1)/2)
		for i := 0; i < len(current); i += 2 {
			var combined [32]byte
			if i+1 < len(current) {
				combined = hashPair(current[i], current[i+1])
			} else {
				combined = current[i]
			}
			next = append(next, combined)
			t.nodes = append(t.nodes, combined)
		}
		current = next
	}
	return t
}

func hashPair(left, right [32]byte) [32]byte {
	var data [64]byte
	copy(data[:32], left[:])
	copy(data[32:], right[:])
	return primitives.Hash(data[:])
}

// Root returns the tree's Merkle root, the zero hash for an empty tree.
func (t *MerkleTree) Root() [32]byte {
	if len(t.nodes) == 0 {
		if len(t.leaves) == 1 {
			return t.leaves[0]
		}
		return [32]byte{}
	}
	return t.nodes[len(t.nodes)-1]
}

// MerkleProof is a path of sibling hashes from one leaf to the root.
type MerkleProof struct {
	LeafHash    [32]byte
	LeafIndex   int
	ProofHashes [][32]byte
}

// Proof generates an inclusion proof for the leaf at index, or false if
// index is out of bounds.
func (t *MerkleTree) Proof(index int) (MerkleProof, bool) {
	if index < 0 || index >= len(t.leaves) {
		return MerkleProof{}, false
	}

	proof := MerkleProof{LeafHash: t.leaves[index], LeafIndex: index}
	currentIndex := index
	current := t.leaves

	for len(current) > 1 {
		var siblingIndex int
		if currentIndex%2 == 0 {
			siblingIndex = currentIndex + 1
		} else {
			siblingIndex = currentIndex - 1
		}
		if siblingIndex < len(current) {
			proof.ProofHashes = append(proof.ProofHashes, current[siblingIndex])
		}

		next := make([][32]byte, 0, (len(current)+1)/2)
		for i := 0; i < len(current); i += 2 {
			var combined [32]byte
			if i+1 < len(current) {
				combined = hashPair(current[i], current[i+1])
			} else {
				combined = current[i]
			}
			next = append(next, combined)
		}
		currentIndex /= 2
		current = next
	}

	return proof, true
}

// VerifyMerkleProof reports whether proof establishes that leaf is
// included under root, recomputing the path from the sibling hashes. The
// leaf check and the final root check are constant-time comparisons.
func VerifyMerkleProof(proof MerkleProof, root, leaf [32]byte) bool {
	if !primitives.CTEqual(proof.LeafHash[:], leaf[:]) {
		return false
	}

	current := leaf
	index := proof.LeafIndex
	for _, sibling := range proof.ProofHashes {
		if index%2 == 0 {
			current = hashPair(current, sibling)
		} else {
			current = hashPair(sibling, current)
		}
		index /= 2
	}
	return primitives.CTEqual(current[:], root[:])
}
