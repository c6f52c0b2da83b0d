package recovery

import (
	"encoding/json"

	"github.com/coocood/freecache"
	"github.com/sirupsen/logrus"
)

const megabyte = 1024 * 1024

// statusCache keeps the last successfully read status views so a failed
// store read can still answer with something.
type statusCache struct {
	cache *freecache.Cache
	log   *logrus.Entry
}

func newStatusCache(sizeMB int, log *logrus.Entry) *statusCache {
	if sizeMB <= 0 {
		sizeMB = 1
	}
	return &statusCache{
		cache: freecache.NewCache(sizeMB * megabyte),
		log:   log,
	}
}

func (c *statusCache) put(key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		c.log.Errorf("marshal cached %s: %s", key, err)
		return
	}
	if err := c.cache.Set([]byte(key), raw, 0); err != nil {
		c.log.Debugf("cache %s: %s", key, err)
	}
}

// get decodes a cached value into out. Returns false on a miss.
func (c *statusCache) get(key string, out any) bool {
	raw, err := c.cache.Get([]byte(key))
	if err != nil {
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		c.log.Errorf("unmarshal cached %s: %s", key, err)
		return false
	}
	return true
}

func (c *statusCache) clear() {
	c.cache.Clear()
}

func weekKey(week string) string { return "week::" + week }
func todayKey(day string) string { return "today::" + day }
func openKey(day string) string  { return "open::" + day }
