package config

import (
	"net"
	neturl "net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
)

// DSNValue returns the explicit DSN when set, otherwise one assembled from
// the discrete connection fields.
func (c DatabaseRuntimeConfig) DSNValue() string {
	if v := strings.TrimSpace(c.DSN); v != "" {
		return v
	}

	host := strings.TrimSpace(c.Host)
	if host == "" {
		host = defaultDBHost
	}
	port := c.Port
	if port == 0 {
		port = defaultDBPort
	}
	name := strings.TrimSpace(c.Name)
	if name == "" {
		name = defaultDBName
	}
	charset := strings.TrimSpace(c.Charset)
	if charset == "" {
		charset = defaultDBCharset
	}

	mc := mysql.NewConfig()
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(host, strconv.Itoa(port))
	mc.User = strings.TrimSpace(c.User)
	mc.Passwd = c.Password
	mc.DBName = name
	mc.ParseTime = c.ParseTime
	if loc, err := time.LoadLocation(strings.TrimSpace(c.Loc)); err == nil && strings.TrimSpace(c.Loc) != "" {
		mc.Loc = loc
	}

	params := map[string]string{"charset": charset}
	for key, value := range c.Params {
		k := strings.TrimSpace(key)
		v := strings.TrimSpace(value)
		if k != "" && v != "" {
			params[k] = v
		}
	}
	mc.Params = params
	return mc.FormatDSN()
}

// URLValue returns a redis:// or rediss:// URL for go-redis ParseURL.
func (c RedisRuntimeConfig) URLValue() string {
	if u := normalizeRedisRawURL(c.URL); u != "" {
		return u
	}

	host := strings.TrimSpace(c.Host)
	if host == "" {
		host = defaultRedisHost
	}
	port := c.Port
	if port == 0 {
		port = defaultRedisPort
	}
	db := c.DB
	if db < 0 {
		db = defaultRedisDB
	}

	scheme := strings.ToLower(strings.TrimSpace(c.Scheme))
	if scheme != "redis" && scheme != "rediss" {
		scheme = "redis"
		if c.TLS {
			scheme = "rediss"
		}
	}

	u := &neturl.URL{
		Scheme: scheme,
		Host:   net.JoinHostPort(host, strconv.Itoa(port)),
		Path:   "/" + strconv.Itoa(db),
	}
	username := strings.TrimSpace(c.Username)
	if username != "" || c.Password != "" {
		if c.Password != "" {
			u.User = neturl.UserPassword(username, c.Password)
		} else {
			u.User = neturl.User(username)
		}
	}

	if len(c.Params) > 0 {
		query := neturl.Values{}
		for key, value := range c.Params {
			k := strings.TrimSpace(key)
			v := strings.TrimSpace(value)
			if k != "" && v != "" {
				query.Set(k, v)
			}
		}
		if len(query) > 0 {
			u.RawQuery = query.Encode()
		}
	}
	return u.String()
}
