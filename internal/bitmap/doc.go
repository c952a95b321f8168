// Package bitmap tracks cluster membership for one iteration of the engine.
//
// A Membership holds one Roaring bitmap of dataset positions per cluster
// index. Two consecutive memberships answer "how many points moved" with k
// intersection cardinalities instead of a full assignment scan, and members
// iterate in ascending dataset order, which is the order clusters list their
// points in.
//
// # Example Usage
//
//	m := bitmap.FromAssignment(assignment, k)
//	moved := m.Moved(prev)
//	for _, idx := range m.Members(0) {
//	    // dataset[idx] belongs to cluster 0
//	}
package bitmap
