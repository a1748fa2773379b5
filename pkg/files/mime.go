// TagVault Core
// Copyright (c) 2026 The TagVault Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of TagVault Core.
//
// TagVault Core is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// TagVault Core is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with TagVault Core.  If not, see <http://www.gnu.org/licenses/>.

package files

// Mime identifies a file format. The numeric order is the sort order used
// when sorting by file type.
type Mime int

const (
	MimeImageJPEG Mime = iota + 1
	MimeImagePNG
	MimeImageAPNG
	MimeImageGIF
	MimeImageBMP
	MimeImageWebP
	MimeImageTIFF
	MimeImageIcon
	MimeVideoMP4
	MimeVideoWebM
	MimeVideoMKV
	MimeVideoFLV
	MimeVideoMOV
	MimeVideoAVI
	MimeVideoWMV
	MimeAudioMP3
	MimeAudioOGG
	MimeAudioFLAC
	MimeAudioWMA
	MimeApplicationPDF
	MimeApplicationZIP
	MimeApplicationFlash
	MimeApplicationCollection
	MimeUnknown
)

var mimeStrings = map[Mime]string{
	MimeImageJPEG:             "jpeg",
	MimeImagePNG:              "png",
	MimeImageAPNG:             "apng",
	MimeImageGIF:              "gif",
	MimeImageBMP:              "bitmap",
	MimeImageWebP:             "webp",
	MimeImageTIFF:             "tiff",
	MimeImageIcon:             "icon",
	MimeVideoMP4:              "mp4",
	MimeVideoWebM:             "webm",
	MimeVideoMKV:              "matroska",
	MimeVideoFLV:              "flv",
	MimeVideoMOV:              "quicktime",
	MimeVideoAVI:              "avi",
	MimeVideoWMV:              "wmv",
	MimeAudioMP3:              "mp3",
	MimeAudioOGG:              "ogg",
	MimeAudioFLAC:             "flac",
	MimeAudioWMA:              "wma",
	MimeApplicationPDF:        "pdf",
	MimeApplicationZIP:        "zip",
	MimeApplicationFlash:      "flash",
	MimeApplicationCollection: "collection",
	MimeUnknown:               "unknown mime",
}

var mimeTypes = map[string]Mime{
	"image/jpeg":                        MimeImageJPEG,
	"image/png":                         MimeImagePNG,
	"image/apng":                        MimeImageAPNG,
	"image/vnd.mozilla.apng":            MimeImageAPNG,
	"image/gif":                         MimeImageGIF,
	"image/bmp":                         MimeImageBMP,
	"image/webp":                        MimeImageWebP,
	"image/tiff":                        MimeImageTIFF,
	"image/x-icon":                      MimeImageIcon,
	"image/vnd.microsoft.icon":          MimeImageIcon,
	"video/mp4":                         MimeVideoMP4,
	"video/webm":                        MimeVideoWebM,
	"video/x-matroska":                  MimeVideoMKV,
	"video/x-flv":                       MimeVideoFLV,
	"video/quicktime":                   MimeVideoMOV,
	"video/x-msvideo":                   MimeVideoAVI,
	"video/x-ms-wmv":                    MimeVideoWMV,
	"audio/mpeg":                        MimeAudioMP3,
	"audio/ogg":                         MimeAudioOGG,
	"audio/flac":                        MimeAudioFLAC,
	"audio/x-flac":                      MimeAudioFLAC,
	"audio/x-ms-wma":                    MimeAudioWMA,
	"application/pdf":                   MimeApplicationPDF,
	"application/zip":                   MimeApplicationZIP,
	"application/x-shockwave-flash":     MimeApplicationFlash,
	"application/vnd.adobe.flash.movie": MimeApplicationFlash,
}

func (m Mime) String() string {
	if s, ok := mimeStrings[m]; ok {
		return s
	}
	return mimeStrings[MimeUnknown]
}

// MimeFromType maps a MIME type string such as "image/png" to a Mime.
func MimeFromType(t string) Mime {
	if m, ok := mimeTypes[t]; ok {
		return m
	}
	return MimeUnknown
}

// IsImage reports whether m is an image format, animated or not.
func (m Mime) IsImage() bool {
	return m >= MimeImageJPEG && m <= MimeImageIcon
}

// IsVideo reports whether m is a video container.
func (m Mime) IsVideo() bool {
	return m >= MimeVideoMP4 && m <= MimeVideoWMV
}

// IsAudio reports whether m is an audio-only format.
func (m Mime) IsAudio() bool {
	return m >= MimeAudioMP3 && m <= MimeAudioWMA
}
