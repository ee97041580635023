// Package redistest answers go-redis commands from memory through a client hook, so Redis-backed
// stores can be tested without a server. Only GET, SET, DEL, EXPIRE and INCR are understood.
package redistest

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Server is the in-memory keyspace behind a client returned by NewClient.
type Server struct {
	mu   sync.Mutex
	data map[string]string
	ttl  map[string]time.Duration
	fail error
}

// NewClient returns a client whose commands never reach the network.
func NewClient() (*redis.Client, *Server) {
	srv := &Server{data: map[string]string{}, ttl: map[string]time.Duration{}}
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	client.AddHook(srv)
	return client, srv
}

// Set stores a raw value, bypassing the client.
func (s *Server) Set(key, value string) {
	s.mu.Lock()
	s.data[key] = value
	s.mu.Unlock()
}

// Value returns the raw value of key.
func (s *Server) Value(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok
}

// TTL returns the last expiration set on key.
func (s *Server) TTL(key string) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ttl[key]
}

// FailWith makes every later command return err; nil restores normal operation.
func (s *Server) FailWith(err error) {
	s.mu.Lock()
	s.fail = err
	s.mu.Unlock()
}

func (s *Server) DialHook(next redis.DialHook) redis.DialHook { return next }

func (s *Server) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		for _, cmd := range cmds {
			if err := s.process(cmd); err != nil {
				return err
			}
		}
		return nil
	}
}

func (s *Server) ProcessHook(redis.ProcessHook) redis.ProcessHook {
	return func(_ context.Context, cmd redis.Cmder) error {
		return s.process(cmd)
	}
}

func (s *Server) process(cmd redis.Cmder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		cmd.SetErr(s.fail)
		return s.fail
	}

	args := cmd.Args()
	key := ""
	if len(args) > 1 {
		key = str(args[1])
	}
	switch c := cmd.(type) {
	case *redis.StringCmd:
		v, ok := s.data[key]
		if !ok {
			c.SetErr(redis.Nil)
			return redis.Nil
		}
		c.SetVal(v)
	case *redis.StatusCmd:
		s.data[key] = str(args[2])
		delete(s.ttl, key)
		for i := 3; i+1 < len(args); i++ {
			if strings.EqualFold(str(args[i]), "ex") {
				sec, _ := strconv.Atoi(str(args[i+1]))
				s.ttl[key] = time.Duration(sec) * time.Second
			}
			if strings.EqualFold(str(args[i]), "px") {
				ms, _ := strconv.Atoi(str(args[i+1]))
				s.ttl[key] = time.Duration(ms) * time.Millisecond
			}
		}
		c.SetVal("OK")
	case *redis.BoolCmd:
		_, ok := s.data[key]
		if ok && len(args) > 2 {
			sec, _ := strconv.Atoi(str(args[2]))
			s.ttl[key] = time.Duration(sec) * time.Second
		}
		c.SetVal(ok)
	case *redis.IntCmd:
		switch cmd.Name() {
		case "del":
			var n int64
			for _, a := range args[1:] {
				if _, ok := s.data[str(a)]; ok {
					delete(s.data, str(a))
					delete(s.ttl, str(a))
					n++
				}
			}
			c.SetVal(n)
		case "incr":
			n, err := strconv.ParseInt(s.dataOr(key, "0"), 10, 64)
			if err != nil {
				err = fmt.Errorf("ERR value is not an integer or out of range")
				c.SetErr(err)
				return err
			}
			n++
			s.data[key] = strconv.FormatInt(n, 10)
			c.SetVal(n)
		default:
			return s.unsupported(cmd)
		}
	default:
		return s.unsupported(cmd)
	}
	return nil
}

func (s *Server) dataOr(key, fallback string) string {
	if v, ok := s.data[key]; ok {
		return v
	}
	return fallback
}

func (s *Server) unsupported(cmd redis.Cmder) error {
	err := fmt.Errorf("redistest: unsupported command %q", cmd.Name())
	cmd.SetErr(err)
	return err
}

func str(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case []byte:
		return string(x)
	default:
		return fmt.Sprint(x)
	}
}
