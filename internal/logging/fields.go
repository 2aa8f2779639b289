package logging

import "github.com/sirupsen/logrus"

// BaseFields 构建 action + 配置路径等基础字段，便于不同入口复用。
func BaseFields(action, configPath string) logrus.Fields {
	return logrus.Fields{
		"action":     action,
		"configPath": configPath,
	}
}

// FetchFields 提供一次下载的 url/目标路径/fetch_id 字段，供 fetcher 日志复用。
func FetchFields(fetchID, url, destination string) logrus.Fields {
	return logrus.Fields{
		"fetch_id":    fetchID,
		"url":         url,
		"destination": destination,
	}
}

// ResourceFields 描述入口层的请求：资源种类（name/hash/url）与原始标识。
func ResourceFields(kind, ref string) logrus.Fields {
	return logrus.Fields{
		"resource_kind": kind,
		"resource_ref":  ref,
	}
}
