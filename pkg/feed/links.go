package feed

import (
	"strconv"

	"github.com/mmcdole/gofeed"

	"github.com/shouni/go-article-metrics/pkg/types"
)

// LinkSource は、リンクアイテムのリストを提供できる任意の型を表します。
type LinkSource interface {
	GetLinks() []string
}

// FeedAdapter は gofeed.Feed を LinkSource に適合させるためのアダプターです。
type FeedAdapter struct {
	*gofeed.Feed
}

// NewFeedAdapter は gofeed.Feed から新しいアダプターを作成します。
func NewFeedAdapter(feed *gofeed.Feed) *FeedAdapter {
	return &FeedAdapter{Feed: feed}
}

// GetLinks は gofeed.Feed のアイテムから空でないリンクを順に抽出します。
func (a *FeedAdapter) GetLinks() []string {
	if a.Feed == nil || len(a.Items) == 0 {
		return []string{}
	}

	urls := make([]string, 0, len(a.Items))
	for _, item := range a.Items {
		if item != nil && item.Link != "" {
			urls = append(urls, item.Link)
		}
	}
	return urls
}

// ToRows はリンクを入力テーブルの行に変換します。
// URL_ID は prefix に1始まりの連番を付けたものです。
func ToRows(source LinkSource, prefix string) []types.Row {
	if source == nil {
		return []types.Row{}
	}
	links := source.GetLinks()
	rows := make([]types.Row, 0, len(links))
	for i, link := range links {
		id := prefix + strconv.Itoa(i+1)
		rows = append(rows, types.Row{ID: id, URL: link, Record: []string{id, link}})
	}
	return rows
}

// ToTable は gofeed.Feed から入力テーブルの行を生成します。
func ToTable(feed *gofeed.Feed, prefix string) []types.Row {
	return ToRows(NewFeedAdapter(feed), prefix)
}
