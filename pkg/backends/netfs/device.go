// ShareMount Core
// Copyright (c) 2026 The ShareMount Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of ShareMount Core.
//
// ShareMount Core is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// ShareMount Core is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with ShareMount Core.  If not, see <http://www.gnu.org/licenses/>.

package netfs

import (
	"net/url"
	"strings"

	"github.com/ShareMountProject/sharemount-core/pkg/mounts"
)

// deviceURL builds the mount_smbfs device argument:
// //[domain;][user[:password]@]server/share. mount_smbfs percent-decodes
// every URL component, so credentials are escaped here. The ; separating
// domain from user must stay raw or it is not recognized as a separator.
func deviceURL(cfg mounts.Config, creds *mounts.Credentials) string {
	var b strings.Builder
	b.WriteString("//")

	if creds != nil && creds.Username != "" {
		if creds.Domain != "" {
			b.WriteString(escapeComponent(creds.Domain))
			b.WriteString(";")
		}
		b.WriteString(escapeComponent(creds.Username))
		if creds.Password != "" {
			b.WriteString(":")
			b.WriteString(escapeComponent(creds.Password))
		}
		b.WriteString("@")
	}

	host := cfg.Server
	if strings.Contains(host, ":") && !strings.HasPrefix(host, "[") {
		host = "[" + host + "]"
	}
	b.WriteString(host)
	b.WriteString("/")
	b.WriteString(url.PathEscape(cfg.Share))

	return b.String()
}

// escapeComponent percent-encodes everything outside the RFC 3986
// unreserved set. Stricter than url.PathEscape, which leaves : ; and @
// intact and would corrupt the userinfo section.
func escapeComponent(s string) string {
	const unreserved = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-._~"
	const hex = "0123456789ABCDEF"

	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if strings.IndexByte(unreserved, c) >= 0 {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0xf])
	}
	return b.String()
}
