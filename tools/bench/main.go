package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// -------------------- 统计 --------------------

type APITestStats struct {
	TotalRequests      int
	SuccessfulRequests int
	FailedRequests     int
	latencies          []time.Duration
	mu                 sync.Mutex
}

func (s *APITestStats) Add(success bool, latency time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.TotalRequests++
	if !success {
		s.FailedRequests++
		return
	}
	s.SuccessfulRequests++
	s.latencies = append(s.latencies, latency)
}

// Percentile 成功请求的延迟分位数
func (s *APITestStats) Percentile(p float64) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.latencies) == 0 {
		return 0
	}
	sorted := append([]time.Duration(nil), s.latencies...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	idx := int(float64(len(sorted)-1) * p)
	return sorted[idx]
}

// -------------------- HTTP客户端 --------------------

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type benchClient struct {
	base   string
	http   *http.Client
	stats  map[string]*APITestStats
	mu     sync.Mutex
	failed []string
}

func newBenchClient(base string) *benchClient {
	return &benchClient{
		base:  strings.TrimRight(base, "/"),
		http:  &http.Client{Timeout: 8 * time.Second},
		stats: make(map[string]*APITestStats),
	}
}

func (b *benchClient) statsFor(name string) *APITestStats {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.stats[name]
	if !ok {
		s = &APITestStats{}
		b.stats[name] = s
	}
	return s
}

// call 发送请求并记录延迟，name 用于分组统计
func (b *benchClient) call(name, method, path, token string, body, out interface{}) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequest(method, b.base+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := b.http.Do(req)
	latency := time.Since(start)
	if err != nil {
		b.statsFor(name).Add(false, latency)
		return err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		b.statsFor(name).Add(false, latency)
		return err
	}
	if env.Code != 0 {
		b.statsFor(name).Add(false, latency)
		return fmt.Errorf("%s: code=%d message=%s", name, env.Code, env.Message)
	}
	b.statsFor(name).Add(true, latency)
	if out != nil {
		return json.Unmarshal(env.Data, out)
	}
	return nil
}

func (b *benchClient) recordFailure(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.failed) < 10 {
		b.failed = append(b.failed, err.Error())
	}
}

// -------------------- 场景 --------------------

type account struct {
	ID    string
	Token string
}

func (b *benchClient) register() (account, error) {
	name := "bench" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	var out struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
		AccessToken string `json:"access_token"`
	}
	err := b.call("register", http.MethodPost, "/api/v1/users/register", "", map[string]string{
		"username": name,
		"password": "bench123",
	}, &out)
	return account{ID: out.User.ID, Token: out.AccessToken}, err
}

// runSocialBench 所有用户加入同一个活动，在活动群聊中发言，并给下一个用户发私聊
func runSocialBench(base string, users, messages int) *benchClient {
	fmt.Println("\n=== 活动社交API并发测试开始 ===")
	fmt.Printf("目标: %s 用户数: %d 每用户消息: %d\n", base, users, messages)

	b := newBenchClient(base)
	accounts := make([]account, users)
	var wg sync.WaitGroup
	for i := 0; i < users; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			acc, err := b.register()
			if err != nil {
				b.recordFailure(err)
			}
			accounts[i] = acc
		}(i)
	}
	wg.Wait()

	host := accounts[0]
	if host.Token == "" {
		fmt.Println("注册失败，无法继续")
		return b
	}
	var event struct {
		ID string `json:"id"`
	}
	if err := b.call("create_event", http.MethodPost, "/api/v1/events", host.Token, map[string]interface{}{
		"title":       "Bench night",
		"description": "Load test gathering",
		"date":        time.Now().Format("2006-01-02"),
		"location":    "Localhost",
		"capacity":    users + 1,
	}, &event); err != nil {
		fmt.Printf("创建活动失败: %v\n", err)
		return b
	}

	// 私聊只对好友开放，先让相邻用户互加好友
	for i, acc := range accounts {
		peer := accounts[(i+1)%len(accounts)]
		if acc.Token == "" || peer.Token == "" || peer.ID == acc.ID {
			continue
		}
		if err := b.call("friend_request", http.MethodPost, "/api/v1/friends/requests/"+peer.ID, acc.Token, nil, nil); err != nil {
			b.recordFailure(err)
			continue
		}
		if err := b.call("friend_accept", http.MethodPost, "/api/v1/friends/requests/"+acc.ID+"/accept", peer.Token, nil, nil); err != nil {
			b.recordFailure(err)
		}
	}

	start := time.Now()
	for i, acc := range accounts {
		if acc.Token == "" {
			continue
		}
		wg.Add(1)
		go func(i int, acc account) {
			defer wg.Done()
			if i > 0 {
				if err := b.call("join_event", http.MethodPost, "/api/v1/events/"+event.ID+"/join", acc.Token, nil, nil); err != nil {
					b.recordFailure(err)
				}
			}
			peer := accounts[(i+1)%len(accounts)]
			for j := 0; j < messages; j++ {
				text := map[string]string{"text": fmt.Sprintf("message %d from %d", j, i)}
				if err := b.call("event_message", http.MethodPost, "/api/v1/events/"+event.ID+"/messages", acc.Token, text, nil); err != nil {
					b.recordFailure(err)
				}
				if peer.ID != "" && peer.ID != acc.ID {
					if err := b.call("direct_message", http.MethodPost, "/api/v1/conversations/"+peer.ID+"/messages", acc.Token, text, nil); err != nil {
						b.recordFailure(err)
					}
				}
			}
			if err := b.call("event_history", http.MethodGet, "/api/v1/events/"+event.ID+"/messages?limit=50", acc.Token, nil, nil); err != nil {
				b.recordFailure(err)
			}
			if err := b.call("recent_conversations", http.MethodGet, "/api/v1/conversations", acc.Token, nil, nil); err != nil {
				b.recordFailure(err)
			}
		}(i, acc)
	}
	wg.Wait()
	took := time.Since(start)

	fmt.Println("\n=== 测试结果 ===")
	fmt.Printf("耗时: %v\n", took)
	names := make([]string, 0, len(b.stats))
	for name := range b.stats {
		names = append(names, name)
	}
	sort.Strings(names)
	total := 0
	for _, name := range names {
		s := b.stats[name]
		total += s.SuccessfulRequests
		fmt.Printf("%-22s 总请求: %5d 成功: %5d 失败: %4d P50: %-10v P99: %v\n",
			name, s.TotalRequests, s.SuccessfulRequests, s.FailedRequests, s.Percentile(0.5), s.Percentile(0.99))
	}
	if took > 0 {
		fmt.Printf("QPS: %.2f\n", float64(total)/took.Seconds())
	}
	for _, f := range b.failed {
		fmt.Printf("失败示例: %s\n", f)
	}
	return b
}

// -------------------- 入口 --------------------

func main() {
	base := flag.String("base", "http://localhost:8080", "服务地址")
	users := flag.Int("users", 20, "并发用户数")
	messages := flag.Int("messages", 10, "每个用户发送的消息数")
	flag.Parse()

	if *users < 2 {
		fmt.Println("users 至少为 2")
		os.Exit(1)
	}
	b := runSocialBench(*base, *users, *messages)
	for _, s := range b.stats {
		if s.FailedRequests > 0 {
			os.Exit(1)
		}
	}
}
