// symbols/symbol_table.go - Module scope entry point
//
// The scope is split into:
// - symbol_table_core.go: Symbol kinds, entries and errors
// - symbol_table_operations.go: Environment construction and lookups
// - symbol_table_resolution.go: Operation resolution through facilities

package symbols
