package repository

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/redis/rueidis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LooKaiJun/ShoreSquad/internal/logger"
)

// respServer answers the RESP2 subset the snapshot repository uses: GET and
// SET on string keys. HELLO is refused so the client stays on RESP2.
type respServer struct {
	ln net.Listener

	mu      sync.Mutex
	values  map[string]string
	failing bool
}

func newRespServer(t *testing.T) *respServer {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := &respServer{ln: ln, values: map[string]string{}}
	t.Cleanup(func() { _ = ln.Close() })

	go srv.serve()

	return srv
}

func (s *respServer) serve() {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}
		go s.handle(conn)
	}
}

func (s *respServer) handle(conn net.Conn) {
	defer conn.Close()

	r := bufio.NewReader(conn)
	for {
		args, err := readCommand(r)
		if err != nil {
			return
		}
		if _, err := io.WriteString(conn, s.reply(args)); err != nil {
			return
		}
	}
}

func (s *respServer) reply(args []string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch strings.ToUpper(args[0]) {
	case "HELLO":
		return "-ERR unknown command 'HELLO'\r\n"
	case "GET":
		if s.failing {
			return "-ERR backend unavailable\r\n"
		}
		v, ok := s.values[args[1]]
		if !ok {
			return "$-1\r\n"
		}
		return fmt.Sprintf("$%d\r\n%s\r\n", len(v), v)
	case "SET":
		if s.failing {
			return "-ERR backend unavailable\r\n"
		}
		s.values[args[1]] = args[2]
		return "+OK\r\n"
	default:
		return "+OK\r\n"
	}
}

func (s *respServer) set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

func (s *respServer) get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *respServer) fail() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failing = true
}

func readCommand(r *bufio.Reader) ([]string, error) {
	line, err := readLine(r)
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(line, "*") {
		return nil, errors.New("expected array")
	}

	n, err := strconv.Atoi(line[1:])
	if err != nil || n < 1 {
		return nil, errors.New("bad array length")
	}

	args := make([]string, n)
	for i := range args {
		header, err := readLine(r)
		if err != nil {
			return nil, err
		}
		size, err := strconv.Atoi(strings.TrimPrefix(header, "$"))
		if err != nil {
			return nil, err
		}
		buf := make([]byte, size+2)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, err
		}
		args[i] = string(buf[:size])
	}

	return args, nil
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSuffix(line, "\r\n"), nil
}

const redisTestKey = "shoresquad-data"

func newTestRedisRepo(t *testing.T) (*RedisSnapshotRepositoryImpl, *respServer) {
	t.Helper()

	srv := newRespServer(t)
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:       []string{srv.ln.Addr().String()},
		ForceSingleClient: true,
		AlwaysRESP2:       true,
		DisableCache:      true,
		DisableRetry:      true,
		ClientSetInfo:     rueidis.DisableClientSetInfo,
	})
	require.NoError(t, err)
	t.Cleanup(client.Close)

	return NewRedisSnapshotRepositoryImpl(client, redisTestKey, logger.Discard()), srv
}

func TestRedisSnapshotRepository_EmptyWhenKeyMissing(t *testing.T) {
	repo, _ := newTestRedisRepo(t)

	snapshot, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snapshot.Events)
	assert.Empty(t, snapshot.Crew)
}

func TestRedisSnapshotRepository_RoundTrip(t *testing.T) {
	repo, srv := newTestRedisRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, sampleSnapshot()))

	stored, ok := srv.get(redisTestKey)
	require.True(t, ok)
	encoded, err := EncodeSnapshot(sampleSnapshot())
	require.NoError(t, err)
	assert.JSONEq(t, string(encoded), stored)

	loaded, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleSnapshot(), loaded)

	updated := sampleSnapshot()
	updated.Events = updated.Events[:1]
	require.NoError(t, repo.Save(ctx, updated))

	loaded, err = repo.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, loaded.Events, 1)
}

func TestRedisSnapshotRepository_CorruptPayloadIsEmpty(t *testing.T) {
	repo, srv := newTestRedisRepo(t)
	srv.set(redisTestKey, "{not json")

	snapshot, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snapshot.Events)
	assert.Empty(t, snapshot.Crew)
}

func TestRedisSnapshotRepository_ServerErrors(t *testing.T) {
	repo, srv := newTestRedisRepo(t)
	srv.fail()
	ctx := context.Background()

	_, err := repo.Load(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backend unavailable")

	err = repo.Save(ctx, sampleSnapshot())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to save snapshot")
}
