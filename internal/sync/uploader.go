package sync

import (
	"fmt"

	"wikipen/internal/rewrite"
)

// uploadResources pushes manifest entries one at a time, in manifest order.
// The first failure stops the loop and is returned. An empty manifest
// returns before any client call.
func (s *Syncer) uploadResources(pageID string, manifest []rewrite.Resource) error {
	if len(manifest) == 0 {
		return nil
	}

	for _, res := range manifest {
		s.logger.Debug("Uploading attachment %s", res.Filename)
		if _, err := s.client.UploadAttachment(pageID, res.FullPath); err != nil {
			return fmt.Errorf("failed to upload '%s': %w", res.Filename, err)
		}
	}

	s.logger.Info("Uploaded %d attachment(s)", len(manifest))
	return nil
}
