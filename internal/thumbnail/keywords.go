package thumbnail

import (
	"regexp"
	"sort"
	"strings"
)

// MaxBodyKeywords caps ExtractKeywords when no limit is given.
const MaxBodyKeywords = 10

// techPatterns match the technology terms worth searching for. Order
// matters: ties in frequency keep pattern order.
var techPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(AWS|EC2|S3|Lambda|RDS|VPC|CloudFormation|API Gateway)\b`),
	regexp.MustCompile(`(?i)\b(Python|Django|Flask|FastAPI|JavaScript|React|Vue|Node\.js)\b`),
	regexp.MustCompile(`(?i)\b(MongoDB|PostgreSQL|MySQL|Redis|Elasticsearch)\b`),
	regexp.MustCompile(`(?i)\b(Docker|Kubernetes|Git|CI/CD|DevOps)\b`),
	regexp.MustCompile(`(?i)\b(AI|ML|YOLO|OpenCV|TensorFlow|PyTorch)\b`),
	regexp.MustCompile(`(?i)\b(API|REST|GraphQL|gRPC|WebSocket)\b`),
}

// techHints mark a search keyword as technical.
var techHints = []string{
	"programming", "development", "software", "computer", "technology",
	"coding", "api", "database", "cloud", "server", "web",
}

const (
	maxTechKeywords  = 5
	maxOtherKeywords = 3
)

// ExtractKeywords returns the technology terms in text, lower-cased and
// ordered by frequency. Equal counts keep first-seen order.
func ExtractKeywords(text string, max int) []string {
	if max <= 0 {
		max = MaxBodyKeywords
	}
	counts := make(map[string]int)
	var order []string
	for _, re := range techPatterns {
		for _, m := range re.FindAllString(text, -1) {
			kw := strings.ToLower(m)
			if counts[kw] == 0 {
				order = append(order, kw)
			}
			counts[kw]++
		}
	}
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > max {
		order = order[:max]
	}
	return order
}

// Mapping expands a term into stock-photo search phrases.
type Mapping map[string][]string

// Merge returns a copy of m with overrides applied on top. Override keys
// are lower-cased.
func (m Mapping) Merge(overrides map[string][]string) Mapping {
	out := make(Mapping, len(m)+len(overrides))
	for k, v := range m {
		out[k] = v
	}
	for k, v := range overrides {
		out[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return out
}

// PostInfo is what keyword and colour selection read from a post.
type PostInfo struct {
	Title        string
	Categories   []string
	Tags         []string
	BodyKeywords []string
}

// SearchKeywords derives image search phrases for a post. Technical phrases
// come first (at most five) followed by at most three others.
func SearchKeywords(info PostInfo, mapping Mapping) []string {
	var ks keywordSet

	for _, c := range info.Categories {
		c = strings.ToLower(c)
		ks.add(c)
		ks.add(mapping[c]...)
	}
	for _, tag := range info.Tags {
		tag = strings.ReplaceAll(strings.ToLower(tag), "-", " ")
		ks.add(tag)
		ks.add(mapping[strings.ReplaceAll(tag, " ", "")]...)
	}
	for _, kw := range ExtractKeywords(info.Title, 0) {
		ks.add(kw)
		ks.add(mapping[kw]...)
	}
	for _, kw := range info.BodyKeywords {
		ks.add(kw)
		ks.add(mapping[kw]...)
	}

	var tech, other []string
	for _, kw := range ks.items {
		if isTech(kw) {
			tech = append(tech, kw)
		} else {
			other = append(other, kw)
		}
	}
	if len(tech) > maxTechKeywords {
		tech = tech[:maxTechKeywords]
	}
	if len(other) > maxOtherKeywords {
		other = other[:maxOtherKeywords]
	}
	return append(tech, other...)
}

func isTech(kw string) bool {
	kw = strings.ToLower(kw)
	for _, hint := range techHints {
		if strings.Contains(kw, hint) {
			return true
		}
	}
	return false
}

// keywordSet keeps insertion order and drops blanks and repeats.
type keywordSet struct {
	seen  map[string]bool
	items []string
}

func (s *keywordSet) add(kws ...string) {
	if s.seen == nil {
		s.seen = make(map[string]bool)
	}
	for _, kw := range kws {
		if kw == "" || s.seen[kw] {
			continue
		}
		s.seen[kw] = true
		s.items = append(s.items, kw)
	}
}

// DefaultMapping returns the built-in term table.
func DefaultMapping() Mapping {
	return Mapping{
		"aws":    {"cloud computing", "amazon web services", "server infrastructure", "cloud architecture"},
		"ec2":    {"virtual machines", "cloud servers", "compute instances", "server hosting"},
		"s3":     {"cloud storage", "data backup", "file storage", "digital archives"},
		"lambda": {"serverless", "cloud functions", "microservices", "automation"},
		"rds":    {"database", "cloud database", "data management", "sql servers"},
		"vpc":    {"network security", "cloud networking", "private cloud", "network infrastructure"},

		"python":  {"programming", "coding", "software development", "computer programming"},
		"django":  {"web development", "backend programming", "web framework", "server development"},
		"flask":   {"web development", "microframework", "api development", "python web"},
		"fastapi": {"api development", "modern web", "async programming", "high performance"},
		"ninja":   {"api framework", "fast development", "modern programming", "web api"},

		"ai":         {"artificial intelligence", "machine learning", "neural networks", "deep learning"},
		"yolo":       {"computer vision", "object detection", "image recognition", "ai vision"},
		"opencv":     {"computer vision", "image processing", "video analysis", "visual computing"},
		"tensorflow": {"machine learning", "deep learning", "neural networks", "ai development"},
		"pytorch":    {"deep learning", "machine learning", "neural networks", "ai research"},

		"javascript": {"web development", "frontend programming", "interactive web", "coding"},
		"react":      {"frontend development", "user interface", "web components", "modern web"},
		"vue":        {"frontend framework", "user interface", "web development", "javascript"},
		"nextjs":     {"full stack", "react framework", "modern web", "web development"},

		"mongodb":    {"database", "nosql", "document database", "data storage"},
		"postgresql": {"database", "sql", "relational database", "data management"},
		"mysql":      {"database", "sql server", "data management", "web database"},
		"redis":      {"caching", "in-memory database", "performance", "data structure"},

		"docker":     {"containerization", "devops", "deployment", "software containers"},
		"kubernetes": {"container orchestration", "devops", "cloud native", "microservices"},
		"git":        {"version control", "collaboration", "code management", "development tools"},
		"cicd":       {"automation", "devops", "continuous integration", "deployment pipeline"},

		"api":         {"software integration", "web services", "data exchange", "programming interfaces"},
		"testing":     {"software testing", "quality assurance", "code validation", "debugging"},
		"performance": {"optimization", "speed improvement", "efficiency", "system performance"},
		"security":    {"cybersecurity", "data protection", "secure coding", "system security"},
		"async":       {"concurrent programming", "parallel processing", "performance optimization", "modern programming"},
		"tdd":         {"test driven development", "software testing", "code quality", "agile development"},

		"architecture": {"software architecture", "system design", "technical blueprint", "engineering"},
		"optimization": {"performance tuning", "efficiency improvement", "speed optimization", "resource management"},
		"guide":        {"tutorial", "learning", "education", "instruction manual"},
		"analysis":     {"data analysis", "research", "investigation", "examination"},

		"가이드":     {"tutorial", "learning", "education", "instruction manual"},
		"분석":      {"data analysis", "research", "investigation", "examination"},
		"최적화":     {"performance tuning", "efficiency improvement", "speed optimization"},
		"아키텍처":    {"software architecture", "system design", "technical blueprint"},
		"성능":      {"performance", "optimization", "speed", "efficiency"},
		"보안":      {"cybersecurity", "data protection", "secure coding", "system security"},
		"데이터베이스":  {"database", "data management", "sql", "storage"},
		"웹개발":     {"web development", "frontend", "backend", "full stack"},
		"머신러닝":    {"machine learning", "artificial intelligence", "neural networks"},
		"딥러닝":     {"deep learning", "neural networks", "ai", "machine learning"},
		"컴퓨터비전":   {"computer vision", "image processing", "object detection"},
		"클라우드":    {"cloud computing", "aws", "server infrastructure"},
		"서버리스":    {"serverless", "cloud functions", "microservices"},
		"마이크로서비스": {"microservices", "distributed systems", "api"},
		"컨테이너":    {"containerization", "docker", "kubernetes"},
		"데브옵스":    {"devops", "automation", "deployment", "ci/cd"},
		"테스트":     {"software testing", "quality assurance", "tdd"},
		"리팩토링":    {"code refactoring", "code improvement", "clean code"},
		"알고리즘":    {"algorithms", "data structures", "computer science"},
		"자료구조":    {"data structures", "algorithms", "programming"},
		"프레임워크":   {"framework", "development tools", "programming"},
		"라이브러리":   {"library", "programming tools", "software development"},
		"백엔드":     {"backend development", "server programming", "api development"},
		"프론트엔드":   {"frontend development", "user interface", "web design"},
		"풀스택":     {"full stack development", "web development", "programming"},
		"모바일":     {"mobile development", "app development", "mobile apps"},
		"게임개발":    {"game development", "game programming", "interactive media"},
		"블록체인":    {"blockchain", "cryptocurrency", "distributed ledger"},
		"빅데이터":    {"big data", "data analytics", "data science"},
		"인공지능":    {"artificial intelligence", "machine learning", "neural networks"},
	}
}
