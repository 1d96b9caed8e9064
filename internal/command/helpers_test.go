// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package command

import "github.com/staranto/olistconv/internal/clients"

type clientFixture struct {
	id, name string
}

func toClients(fixtures []clientFixture) []clients.Client {
	list := make([]clients.Client, 0, len(fixtures))
	for _, f := range fixtures {
		list = append(list, clients.Client{ID: f.id, Name: f.name})
	}
	return list
}
