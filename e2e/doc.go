// Package e2e holds container backed tests. They run only when E2E is set
// and Docker is reachable.
package e2e
