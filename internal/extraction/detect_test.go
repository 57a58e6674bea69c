package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsLeadQuery(t *testing.T) {
	assert.True(t, IsLeadQuery("Find me leads in the manufacturing sector"))
	assert.True(t, IsLeadQuery("list every COMPANY mentioned in the files"))
	assert.True(t, IsLeadQuery("거래처 연락처 좀 찾아줘"))
	assert.True(t, IsLeadQuery("この企業の連絡先を教えて"))

	assert.False(t, IsLeadQuery("what's the weather today?"))
	assert.False(t, IsLeadQuery("tell me a joke"))
}

func TestContainsDriveLink(t *testing.T) {
	assert.True(t, ContainsDriveLink("see https://drive.google.com/drive/folders/abc123"))
	assert.True(t, ContainsDriveLink("DRIVE.GOOGLE.COM/file/d/xyz"))
	assert.False(t, ContainsDriveLink("https://docs.example.com/folder"))
}
