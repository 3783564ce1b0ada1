// Package reconcile maintains a rendered region of the display tree that
// mirrors an ordered sequence, with minimal node churn.
//
// A KeyedList owns a pair of boundary markers delimiting its region of the
// parent node and an insertion-ordered map from key to rendered node. On
// every update it removes nodes whose keys vanished, reuses nodes whose keys
// survive, renders nodes for new keys, and repositions in a single linear
// pass using only insert-before. A reused node's own internal reactivity is
// left untouched; reconciliation never force-refreshes content.
//
// Sources are either static (rendered once) or a reactive getter, which
// re-renders whenever its dependencies change.
package reconcile
