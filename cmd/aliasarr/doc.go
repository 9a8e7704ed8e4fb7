// Command aliasarr manages manual search aliases on top of the series and
// movie tracker databases.
package main
