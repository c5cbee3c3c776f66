package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vncsmyrnk/livepoll/internal/core/domain"
)

// commitScript is the whole admission commit: both identity keys checked,
// both set, counter bumped and record appended, in one atomic EVAL. Returns 0
// without touching anything when either identity already voted.
var commitScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 or redis.call('EXISTS', KEYS[2]) == 1 then
  return 0
end
redis.call('SET', KEYS[1], 1)
redis.call('SET', KEYS[2], 1)
redis.call('HINCRBY', KEYS[3], ARGV[1], 1)
redis.call('RPUSH', KEYS[4], ARGV[2])
return 1
`)

// Store implements the poll repository and the vote ledger on Redis. Poll
// metadata lives as a JSON blob, tallies as a hash keyed by option index, the
// ledger as identity marker keys plus a record list.
type Store struct {
	client *redis.Client
}

func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

type pollMeta struct {
	Question  string    `json:"question"`
	Options   []string  `json:"options"`
	CreatedAt time.Time `json:"created_at"`
}

func metaKey(pollID string) string    { return "poll:" + pollID + ":meta" }
func talliesKey(pollID string) string { return "poll:" + pollID + ":tallies" }
func votesKey(pollID string) string   { return "poll:" + pollID + ":votes" }
func fpKey(pollID, fp string) string  { return "vote:" + pollID + ":fp:" + fp }
func ipKey(pollID, ip string) string  { return "vote:" + pollID + ":addr:" + ip }

const pollIndexKey = "polls"

func (s *Store) Save(ctx context.Context, poll *domain.Poll) error {
	meta := pollMeta{
		Question:  poll.Question,
		CreatedAt: poll.CreatedAt,
	}
	tallies := make(map[string]interface{}, len(poll.Options))
	for i, opt := range poll.Options {
		meta.Options = append(meta.Options, opt.Text)
		tallies[strconv.Itoa(i)] = opt.Votes
	}

	raw, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to marshal poll: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, metaKey(poll.ID), raw, 0)
	pipe.HSet(ctx, talliesKey(poll.ID), tallies)
	pipe.SAdd(ctx, pollIndexKey, poll.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: failed to save poll: %v", domain.ErrStorageUnavailable, err)
	}
	return nil
}

func (s *Store) GetByID(ctx context.Context, id string) (*domain.Poll, error) {
	raw, err := s.client.Get(ctx, metaKey(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, domain.ErrPollNotFound
		}
		return nil, fmt.Errorf("%w: failed to get poll: %v", domain.ErrStorageUnavailable, err)
	}

	var meta pollMeta
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, fmt.Errorf("failed to unmarshal poll: %w", err)
	}

	counts, err := s.client.HGetAll(ctx, talliesKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get tallies: %v", domain.ErrStorageUnavailable, err)
	}

	poll := &domain.Poll{
		ID:        id,
		Question:  meta.Question,
		CreatedAt: meta.CreatedAt,
		Options:   make([]domain.Option, len(meta.Options)),
	}
	for i, text := range meta.Options {
		votes, _ := strconv.ParseInt(counts[strconv.Itoa(i)], 10, 64)
		poll.Options[i] = domain.Option{Text: text, Votes: votes}
	}
	return poll, nil
}

func (s *Store) GetAll(ctx context.Context) ([]*domain.Poll, error) {
	ids, err := s.client.SMembers(ctx, pollIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list polls: %v", domain.ErrStorageUnavailable, err)
	}

	polls := make([]*domain.Poll, 0, len(ids))
	for _, id := range ids {
		poll, err := s.GetByID(ctx, id)
		if err != nil {
			if err == domain.ErrPollNotFound {
				continue
			}
			return nil, err
		}
		polls = append(polls, poll)
	}
	return polls, nil
}

func (s *Store) CommitVote(ctx context.Context, vote *domain.Vote) error {
	record, err := json.Marshal(vote)
	if err != nil {
		return fmt.Errorf("failed to marshal vote: %w", err)
	}

	keys := []string{
		fpKey(vote.PollID, vote.Fingerprint),
		ipKey(vote.PollID, vote.IPAddress),
		talliesKey(vote.PollID),
		votesKey(vote.PollID),
	}
	accepted, err := commitScript.Run(ctx, s.client, keys, vote.OptionIndex, record).Int()
	if err != nil {
		return fmt.Errorf("%w: failed to commit vote: %v", domain.ErrStorageUnavailable, err)
	}
	if accepted == 0 {
		return domain.ErrDuplicateVote
	}
	return nil
}

func (s *Store) HasVoted(ctx context.Context, pollID, fingerprint, ipAddress string) (bool, error) {
	n, err := s.client.Exists(ctx, fpKey(pollID, fingerprint), ipKey(pollID, ipAddress)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: failed to check existing vote: %v", domain.ErrStorageUnavailable, err)
	}
	return n > 0, nil
}

func (s *Store) Recount(ctx context.Context, pollID string) error {
	poll, err := s.GetByID(ctx, pollID)
	if err != nil {
		return err
	}

	records, err := s.client.LRange(ctx, votesKey(pollID), 0, -1).Result()
	if err != nil {
		return fmt.Errorf("%w: failed to read vote records: %v", domain.ErrStorageUnavailable, err)
	}

	counts := make(map[string]interface{}, len(poll.Options))
	for i := range poll.Options {
		counts[strconv.Itoa(i)] = int64(0)
	}
	for _, raw := range records {
		var vote domain.Vote
		if err := json.Unmarshal([]byte(raw), &vote); err != nil {
			return fmt.Errorf("failed to unmarshal vote record: %w", err)
		}
		field := strconv.Itoa(vote.OptionIndex)
		current, _ := counts[field].(int64)
		counts[field] = current + 1
	}

	if err := s.client.HSet(ctx, talliesKey(pollID), counts).Err(); err != nil {
		return fmt.Errorf("%w: failed to rewrite tallies: %v", domain.ErrStorageUnavailable, err)
	}
	return nil
}
