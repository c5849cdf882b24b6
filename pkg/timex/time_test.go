package timex

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTime_UnixMethods(t *testing.T) {
	// 创建一个固定时间
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	tt := Time(now)

	assert.Equal(t, now.Unix(), tt.Unix())
	assert.Equal(t, now.UnixMilli(), tt.UnixMilli())
	assert.Equal(t, now.UnixMicro(), tt.UnixMicro())
	assert.Equal(t, now.UnixNano(), tt.UnixNano())

	// 等待一会确认返回值是固定的，而不是 time.Now()
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, now.Unix(), tt.Unix())
}

func TestTime_JSON(t *testing.T) {
	tt := Time(time.Date(2024, 3, 5, 8, 9, 10, 123000000, time.UTC))

	b, err := json.Marshal(tt)
	require.NoError(t, err)
	assert.Equal(t, `"2024-03-05T08:09:10.123Z"`, string(b))

	var back Time
	require.NoError(t, json.Unmarshal(b, &back))
	assert.True(t, back.Time().Equal(tt.Time()))

	zero, err := json.Marshal(Time{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(zero))
}

func TestTime_Scan(t *testing.T) {
	tests := []struct {
		name    string
		in      interface{}
		want    time.Time
		wantErr bool
	}{
		{name: "time", in: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), want: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)},
		{name: "rfc3339 string", in: "2024-01-02T03:04:05Z", want: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)},
		{name: "sqlite bytes", in: []byte("2024-01-02 03:04:05"), want: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)},
		{name: "nil", in: nil, want: time.Time{}},
		{name: "garbage", in: "yesterday-ish", wantErr: true},
		{name: "wrong type", in: 42, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Time
			err := got.Scan(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Time().Equal(tt.want))
		})
	}
}
