// Package render serializes vdom trees to HTML.
//
// The renderer makes two passes' worth of work in one walk: it writes
// escaped HTML, and it assigns hydration IDs to interactive elements
// while collecting their event handlers into a table. The live session
// swaps in the fresh table after every render so client events always
// reach the handlers from the tree the browser is showing.
package render
