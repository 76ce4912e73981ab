// See client.go for the full ABI surface.
package appclient
