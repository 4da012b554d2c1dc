package main

import (
	"encoding/base64"
	"fmt"
	"net"
	"strings"

	"github.com/rs/zerolog/log"

	"gosuda.org/portal/portal/core/cryptoops"
	"gosuda.org/portal/sdk"
)

// relaySet holds the portal clients and listeners the page is published on.
type relaySet struct {
	clients   []*sdk.RDClient
	listeners []net.Listener
}

// loadCredential returns the listener credential, derived from a base64
// private key when one is given.
func loadCredential(credKey string) (*cryptoops.Credential, error) {
	if credKey == "" {
		return sdk.NewCredential(), nil
	}
	key, err := base64.StdEncoding.DecodeString(credKey)
	if err != nil {
		return nil, fmt.Errorf("decode cred key: %w", err)
	}
	cred, err := cryptoops.NewCredentialFromPrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("new credential from private key: %w", err)
	}
	return cred, nil
}

// relayURLs flattens repeated and comma-separated relay URLs.
func relayURLs(raw []string) []string {
	var out []string
	for _, r := range raw {
		for _, p := range strings.Split(r, ",") {
			if u := strings.TrimSpace(p); u != "" {
				out = append(out, u)
			}
		}
	}
	return out
}

// listenRelays opens one listener per relay URL. A relay that cannot be
// reached is skipped; a listen failure aborts.
func listenRelays(urls []string, credKey, name string) (*relaySet, error) {
	rs := &relaySet{}
	if len(urls) == 0 {
		return rs, nil
	}
	cred, err := loadCredential(credKey)
	if err != nil {
		return nil, err
	}
	for _, u := range urls {
		client, err := sdk.NewClient(func(c *sdk.RDClientConfig) { c.BootstrapServers = []string{u} })
		if err != nil {
			log.Error().Err(err).Str("url", u).Msg("[room-chat] new relay client failed")
			continue
		}
		rs.clients = append(rs.clients, client)
		ln, err := client.Listen(cred, name, []string{"http/1.1"})
		if err != nil {
			rs.close()
			return nil, fmt.Errorf("listen (%s): %w", u, err)
		}
		rs.listeners = append(rs.listeners, ln)
		log.Info().Str("url", u).Msg("[room-chat] published over relay")
	}
	return rs, nil
}

func (rs *relaySet) close() {
	for _, ln := range rs.listeners {
		_ = ln.Close()
	}
	for _, c := range rs.clients {
		_ = c.Close()
	}
}
