// See server.go for the accept loop and upload handling, and page.go
// for the static recovery page served on GET.
package recovery
